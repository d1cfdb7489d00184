package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"order-tracker/internal/core/config"
	"order-tracker/internal/core/database"
	"order-tracker/internal/features/orders/domain"

	"github.com/jackc/pgx/v5"
)

const lookupQuery = `
SELECT
  COALESCE(name, '') AS order_name,
  COALESCE(shipping_phone, '') AS phone,
  COALESCE(tags, '') AS tags,
  COALESCE(financial_status, '') AS financial_status,
  COALESCE(fulfillment_status, '') AS fulfillment_status,
  COALESCE(tracking_url, '') AS tracking_url,
  COALESCE(fulfillment_number::text, '') AS fulfillment_number,
  COALESCE(shopify_order_id::text, '') AS carrier_order_id,
  created_at::timestamptz,
  paid_at::timestamptz,
  onfleet_created_at::timestamptz,
  onfleet_delivered_at::timestamptz,
  onfleet_failed_at::timestamptz,
  lalamove_delivered_at::timestamptz,
  COALESCE(shipping_type, '') AS shipping_type,
  COALESCE(full_address, '') AS full_address,
  COALESCE(notes, '') AS notes,
  COALESCE(jt_label_url, '') AS jt_label_url,
  COALESCE(jt_url, '') AS jt_url
FROM public.orders_full
WHERE upper(trim(COALESCE(name, ''))) = $1
  AND regexp_replace(COALESCE(shipping_phone, ''), '\D', '', 'g') ILIKE '%' || $2 || '%'
ORDER BY created_at DESC NULLS LAST
LIMIT 1`

// PoolFactory opens the connection pool on first use.
type PoolFactory func(ctx context.Context) (database.Pool, error)

// PostgresStore implements the OrderStore interface over the orders_full view.
type PostgresStore struct {
	// cfg is used to report missing connection settings.
	cfg config.PostgresConfig
	// open creates the pool lazily so a misconfigured store never dials.
	open PoolFactory

	mu   sync.Mutex
	pool database.Pool
}

// NewPostgresStore creates a store that opens a pgx pool from cfg on the first query.
func NewPostgresStore(cfg config.PostgresConfig) *PostgresStore {
	return &PostgresStore{
		cfg: cfg,
		open: func(ctx context.Context) (database.Pool, error) {
			return database.NewPool(ctx, cfg)
		},
	}
}

// NewPostgresStoreWithPool creates a store over an existing pool.
func NewPostgresStoreWithPool(cfg config.PostgresConfig, pool database.Pool) *PostgresStore {
	return &PostgresStore{cfg: cfg, pool: pool}
}

// MissingConfig lists the PG* keys that are unset.
func (s *PostgresStore) MissingConfig() []string {
	return s.cfg.Missing()
}

// FindLatest returns the newest order matching the exact code and phone digits, or nil.
func (s *PostgresStore) FindLatest(ctx context.Context, orderCode, phone string) (*domain.OrderRecord, error) {
	pool, err := s.getPool(ctx)
	if err != nil {
		return nil, err
	}

	var o domain.OrderRecord
	err = pool.QueryRow(ctx, lookupQuery, orderCode, phone).Scan(
		&o.OrderName,
		&o.Phone,
		&o.Tags,
		&o.FinancialStatus,
		&o.FulfillmentStatus,
		&o.TrackingURL,
		&o.FulfillmentNumber,
		&o.CarrierOrderID,
		&o.CreatedAt,
		&o.PaidAt,
		&o.OnfleetCreatedAt,
		&o.OnfleetDeliveredAt,
		&o.OnfleetFailedAt,
		&o.LalamoveDeliveredAt,
		&o.ShippingType,
		&o.FullAddress,
		&o.Notes,
		&o.JTLabelURL,
		&o.JTURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order %s: %w", orderCode, err)
	}

	normalizeTimes(&o)
	return &o, nil
}

// Ping checks that the store is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	pool, err := s.getPool(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Close releases the pool if it was opened.
func (s *PostgresStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}

func (s *PostgresStore) getPool(ctx context.Context) (database.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		return s.pool, nil
	}
	if s.open == nil {
		return nil, errors.New("postgres pool is closed")
	}

	pool, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	s.pool = pool
	return pool, nil
}

func normalizeTimes(o *domain.OrderRecord) {
	for _, t := range []**time.Time{
		&o.CreatedAt, &o.PaidAt, &o.OnfleetCreatedAt,
		&o.OnfleetDeliveredAt, &o.OnfleetFailedAt, &o.LalamoveDeliveredAt,
	} {
		if *t != nil {
			utc := (*t).UTC()
			*t = &utc
		}
	}
}
