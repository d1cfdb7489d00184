package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"order-tracker/internal/core/cache"
	"order-tracker/internal/core/logger"
	"order-tracker/internal/features/catalog/ports"

	"go.uber.org/zap"
)

const allowListKeyPrefix = "admin_allowlist:"

// CachedAllowList implements ports.AllowList by caching the answers of another AllowList.
type CachedAllowList struct {
	next  ports.AllowList
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedAllowList creates a new CachedAllowList.
func NewCachedAllowList(next ports.AllowList, c cache.Cache, ttl time.Duration) *CachedAllowList {
	return &CachedAllowList{
		next:  next,
		cache: c,
		ttl:   ttl,
	}
}

// IsAllowed answers from the cache, falling back to the wrapped allow-list on a miss.
// Cache failures are logged and bypassed.
func (c *CachedAllowList) IsAllowed(ctx context.Context, email string) (bool, error) {
	key := allowListKeyPrefix + strings.ToLower(strings.TrimSpace(email))

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		return string(data) == "1", nil
	case !errors.Is(err, cache.ErrCacheMiss):
		logger.Get().Warn("Allow-list cache read failed", zap.Error(err))
	}

	allowed, err := c.next.IsAllowed(ctx, email)
	if err != nil {
		return false, fmt.Errorf("allow-list lookup failed: %w", err)
	}

	value := []byte("0")
	if allowed {
		value = []byte("1")
	}
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		logger.Get().Warn("Allow-list cache write failed", zap.Error(err))
	}

	return allowed, nil
}
