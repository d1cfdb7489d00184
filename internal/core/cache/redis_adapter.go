package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter implements the Cache interface using Redis.
type RedisAdapter struct {
	client *redis.Client
	prefix string
}

// Option tunes a RedisAdapter.
type Option func(*redis.Options, *RedisAdapter)

// WithPrefix namespaces every key, e.g. "order-tracker:".
func WithPrefix(prefix string) Option {
	return func(_ *redis.Options, r *RedisAdapter) {
		r.prefix = prefix
	}
}

// WithTimeout bounds dialing and each command, and disables retries.
func WithTimeout(d time.Duration) Option {
	return func(o *redis.Options, _ *RedisAdapter) {
		o.DialTimeout = d
		o.ReadTimeout = d
		o.WriteTimeout = d
		o.MaxRetries = -1
	}
}

// NewRedisAdapter creates a new Redis cache adapter.
// The redisURL should be in the format: redis://[:password@]host[:port][/database]
func NewRedisAdapter(redisURL string, opts ...Option) (*RedisAdapter, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	adapter := &RedisAdapter{}
	for _, opt := range opts {
		opt(redisOpts, adapter)
	}
	adapter.client = redis.NewClient(redisOpts)

	return adapter, nil
}

func (r *RedisAdapter) key(k string) string {
	return r.prefix + k
}

// Get retrieves a value by key. A missing key yields an error wrapping ErrCacheMiss.
func (r *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, nil
}

// Set stores a value with the given TTL; zero keeps it until deleted.
func (r *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (r *RedisAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisAdapter) Close() error {
	return r.client.Close()
}
