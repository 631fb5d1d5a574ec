// Package cache provides a byte-level Store interface with in-memory and Redis
// implementations, plus decorators for circuit breaking and metrics.
//
// All implementations share the same [Store] interface, making it easy to swap
// backends or use in-memory caching for development and Redis for production.
//
// # Interface
//
//   - Get(ctx, key) ([]byte, error): retrieve a value
//   - Set(ctx, key, value, ttl) error: store a value with TTL
//   - Delete(ctx, keys...) error: remove zero or more keys
//   - Close() error: release resources
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the store's configured default TTL (5 minutes by default)
//   - Negative: item never expires
//
// # Typed access
//
// [Typed] encodes values with a [Marshaler] (JSON by default):
//
//	posts := cache.NewTyped[Post](store, nil)
//	_ = posts.Set(ctx, "posts/42", post, 0)
//	p, err := posts.Get(ctx, "posts/42")
//
// # Backends
//
// Use [NewMemory] for single-process applications or testing.
// Use [NewRedis] with a client from [github.com/dmitrymomot/postcache/pkg/redis]
// for a shared cache.
//
// # Decorators
//
// [NewBreaker] wraps a store with a circuit breaker so an unreachable backend
// fails fast with [ErrUnavailable]. [NewInstrumented] records Prometheus
// counters and latency histograms. Decorators compose:
//
//	store := cache.NewInstrumented(
//	    cache.NewBreaker(cache.NewRedis(client)),
//	    prometheus.DefaultRegisterer, "postcache",
//	)
//
// # Error Handling
//
//   - [ErrNotFound]: key does not exist or has expired (a normal miss)
//   - [ErrUnavailable]: backend unreachable or breaker open
//   - [ErrClosed]: operation on a closed store
//   - [ErrMarshal]: value serialization failed
//   - [ErrUnmarshal]: value deserialization failed
//
// Use [errors.Is] to check:
//
//	val, err := store.Get(ctx, "key")
//	if errors.Is(err, cache.ErrNotFound) {
//	    // handle miss
//	}
package cache
