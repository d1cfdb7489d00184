package ports

import (
	"context"

	"order-tracker/internal/features/orders/domain"
	trackingdomain "order-tracker/internal/features/tracking/domain"
)

// OrderStore reads order snapshots.
// This is a Secondary Port (Driven Port).
type OrderStore interface {
	// FindLatest returns the most recent order with the exact code whose phone contains the digits,
	// or nil when there is none.
	FindLatest(ctx context.Context, orderCode, phone string) (*domain.OrderRecord, error)
	// MissingConfig lists the configuration keys the store needs but does not have.
	MissingConfig() []string
}

// TrackingResolver augments an order with carrier tracking data.
// This is a Secondary Port (Driven Port).
type TrackingResolver interface {
	Resolve(ctx context.Context, req trackingdomain.ResolveRequest) (*trackingdomain.Resolution, error)
}

// LookupService is the Primary Port used by the HTTP handler and the CLI.
type LookupService interface {
	Lookup(ctx context.Context, phone, orderCode string) (*domain.LookupResult, error)
}
