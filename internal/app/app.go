// Package app assembles the features from configuration.
package app

import (
	"context"
	"time"

	"order-tracker/internal/core/cache"
	"order-tracker/internal/core/config"
	"order-tracker/internal/core/logger"
	"order-tracker/internal/core/proxy"
	catalogadapter "order-tracker/internal/features/catalog/adapters"
	catalogports "order-tracker/internal/features/catalog/ports"
	catalogservice "order-tracker/internal/features/catalog/service"
	orderadapter "order-tracker/internal/features/orders/adapters"
	orderdomain "order-tracker/internal/features/orders/domain"
	orderservice "order-tracker/internal/features/orders/service"
	trackingadapter "order-tracker/internal/features/tracking/adapters"
	trackingservice "order-tracker/internal/features/tracking/service"

	"go.uber.org/zap"
)

// Lookup is the wired order lookup use case.
type Lookup struct {
	Service *orderservice.LookupService
	store   *orderadapter.PostgresStore
}

// HealthCheck verifies the order store is reachable.
func (l *Lookup) HealthCheck(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// Close releases the order store pool.
func (l *Lookup) Close() {
	l.store.Close()
}

// PolicyFrom builds the lookup policy, keeping the default tags when unset.
func PolicyFrom(cfg config.LookupConfig) orderdomain.Policy {
	policy := orderdomain.DefaultPolicy
	if cfg.CarrierTag != "" {
		policy.CarrierTag = cfg.CarrierTag
	}
	if cfg.LocalTag != "" {
		policy.LocalTag = cfg.LocalTag
	}
	policy.PartialTriggersCarrier = cfg.PartialTriggersCarrier
	return policy
}

// NewLookup wires the order store, the Shopify fetcher and the tracking resolver.
func NewLookup(cfg *config.AppConfig) *Lookup {
	proxySettings := proxy.FromConfig(cfg.Proxy)

	store := orderadapter.NewPostgresStore(cfg.Postgres)
	fetcher := trackingadapter.NewShopifyAdapter(cfg.Shopify, proxySettings)
	resolver := trackingservice.NewTrackingService(fetcher)

	if !cfg.Shopify.HasCredentials() {
		logger.Get().Warn("Shopify credentials missing, carrier tracking will be skipped")
	}

	return &Lookup{
		Service: orderservice.NewLookupService(store, resolver, PolicyFrom(cfg.Lookup)),
		store:   store,
	}
}

// Catalog is the wired catalog administration use case.
type Catalog struct {
	Service *catalogservice.CatalogServiceImpl
	cache   cache.Cache
}

// Close releases the allow-list cache, if any.
func (c *Catalog) Close() {
	if c.cache != nil {
		_ = c.cache.Close()
	}
}

// NewCatalog wires the Airtable store, the identity verifier and the allow-list.
// The allow-list is cached in Redis when REDIS_URL is set and reachable.
func NewCatalog(ctx context.Context, cfg *config.AppConfig) *Catalog {
	proxySettings := proxy.FromConfig(cfg.Proxy)

	airtable := catalogadapter.NewAirtableAdapter(cfg.Airtable, proxySettings)
	identity := catalogadapter.NewIdentityAdapter(cfg.Identity, proxySettings)

	catalog := &Catalog{}
	var allow catalogports.AllowList = airtable

	if cfg.Redis.URL != "" {
		redisCache, err := connectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Get().Warn("Redis unavailable, allow-list cache disabled", zap.Error(err))
		} else {
			catalog.cache = redisCache
			allow = catalogadapter.NewCachedAllowList(airtable, redisCache, cfg.Redis.AllowListTTL)
		}
	}

	catalog.Service = catalogservice.NewCatalogService(identity, allow, airtable)
	return catalog
}

func connectRedis(ctx context.Context, url string) (*cache.RedisAdapter, error) {
	redisCache, err := cache.NewRedisAdapter(url,
		cache.WithPrefix(logger.ServiceName+":"),
		cache.WithTimeout(500*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		_ = redisCache.Close()
		return nil, err
	}
	return redisCache, nil
}
