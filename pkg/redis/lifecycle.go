package redis

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPingTimeout bounds a single health ping when the caller's context
// carries no earlier deadline.
const DefaultPingTimeout = 2 * time.Second

// Healthcheck returns a readiness check that PINGs the server.
// A dead cache should fail fast, so each ping gets its own deadline.
//
//	server.WithOptionalCheck("cache", redis.Healthcheck(client))
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.Join(ErrHealthcheckFailed, ErrNilClient)
		}
		ctx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a hook that closes the client. A nil client is a no-op,
// so the hook can be registered before the cache is known to be enabled.
//
//	app.Run(addr, server.ShutdownHook(redis.Shutdown(client)))
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		if client == nil {
			return nil
		}
		if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return err
		}
		return nil
	}
}
