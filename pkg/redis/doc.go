// Package redis provides Redis client utilities for the cache layer.
//
// This package wraps [github.com/redis/go-redis/v9] to provide connection pooling,
// health checks, and graceful shutdown with sensible defaults for production workloads.
//
// # Features
//
//   - Host/port/password configuration loaded from the environment
//   - Connection pooling with configurable limits and timeouts
//   - Automatic retry logic with linear backoff during startup
//   - Health check function compatible with [github.com/dmitrymomot/postcache/pkg/health]
//   - Shutdown hook for graceful client closure
//
// # Configuration
//
// Connection parameters come from [Config]:
//
//	REDIS_HOST     - Redis host (required to enable the Redis cache)
//	REDIS_PORT     - Redis port (default: 6379)
//	REDIS_PASSWORD - Redis password (default: none)
//	REDIS_DB       - Redis database index (default: 0)
//
// Pool settings are configured via functional options:
//
//   - WithPoolSize(n int): Maximum number of connections (default: 10)
//   - WithMinIdleConns(n int): Minimum idle connections (default: 5)
//   - WithMaxIdleTime(d time.Duration): Maximum connection idle time (default: 10m)
//   - WithMaxActiveTime(d time.Duration): Maximum connection lifetime (default: 30m)
//   - WithRetry(attempts int, interval time.Duration): Retry attempts and base interval (default: 3 attempts, 5s)
//   - WithReadTimeout(d time.Duration): Read operation timeout (default: 3s)
//   - WithWriteTimeout(d time.Duration): Write operation timeout (default: 3s)
//   - WithDialTimeout(d time.Duration): Connection dial timeout (default: 5s)
//
// # Usage
//
//	client, err := redis.Open(ctx, cfg.Redis,
//		redis.WithPoolSize(20),
//	)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// # Error Handling
//
//   - [ErrEmptyHost] - No host configured
//   - [ErrInvalidPort] - Port outside 1..65535
//   - [ErrConnectionFailed] - Connection failed after all retry attempts
//   - [ErrHealthcheckFailed] - Redis ping failed
//   - [ErrNilClient] - Healthcheck was given a nil client
//
// Errors are wrapped using [errors.Join] to preserve the original error context.
package redis
