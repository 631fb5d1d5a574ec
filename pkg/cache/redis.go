package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a store backed by Redis.
// Backend errors are returned joined with ErrUnavailable.
type Redis struct {
	client redis.UniversalClient
	opts   *redisOptions
}

// NewRedis creates a new Redis-backed store.
// The client should be obtained from pkg/redis.Open or pkg/redis.MustOpen.
//
// Example:
//
//	client := redis.MustOpen(ctx, redis.Config{Host: "localhost", Port: 6379})
//	c := cache.NewRedis(client,
//	    cache.WithRedisDefaultTTL(5 * time.Minute),
//	)
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Redis{
		client: client,
		opts:   o,
	}
}

// Get retrieves a value by key from Redis.
// Returns ErrNotFound if the key does not exist.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefixedKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrUnavailable, err)
	}
	return data, nil
}

// Set stores a value in Redis with the given TTL.
// TTL semantics: positive = expires after duration, zero = use default TTL,
// negative = no expiration (persists until manually deleted or Redis evicts it).
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.opts.defaultTTL
	}

	// Redis interprets 0 as no expiration.
	redisTTL := max(ttl, 0)

	if err := r.client.Set(ctx, r.prefixedKey(key), value, redisTTL).Err(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// Delete removes keys from Redis with a single DEL command.
// DEL removes each key independently and ignores missing ones.
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.prefixedKey(key)
	}

	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// Close is a no-op for Redis. The Redis client lifecycle is managed
// separately by the caller (via pkg/redis.Shutdown).
func (r *Redis) Close() error {
	return nil
}

// prefixedKey returns the full Redis key with prefix.
func (r *Redis) prefixedKey(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return r.opts.prefix + ":" + key
}

var _ Store = (*Redis)(nil)
