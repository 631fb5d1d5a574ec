package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Store is a byte-level key-value store with per-key TTL.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the store's configured default TTL
//   - Negative: item never expires
//
// A missing key is reported as ErrNotFound, which callers treat as a normal
// cache miss. Failures of the underlying backend are reported wrapped with
// ErrUnavailable.
type Store interface {
	// Get retrieves the raw value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any existing entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Each key is removed independently and
	// missing keys are not an error. Calling Delete with no keys is a no-op.
	Delete(ctx context.Context, keys ...string) error

	// Close releases resources (stops background goroutines, etc.).
	Close() error
}

// Marshaler serializes and deserializes cache values.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// Typed is a typed view over a Store.
// Values are encoded with the configured Marshaler (default: JSON).
type Typed[V any] struct {
	store     Store
	marshaler Marshaler[V]
}

// NewTyped creates a typed view over store.
// If m is nil, JSON serialization is used.
//
// Example:
//
//	posts := cache.NewTyped[Post](store, nil)
//	p, err := posts.Get(ctx, "posts/"+id)
func NewTyped[V any](store Store, m Marshaler[V]) *Typed[V] {
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	return &Typed[V]{store: store, marshaler: m}
}

// Get retrieves and decodes the value stored under key.
// Returns ErrNotFound on a miss and ErrUnmarshal if the stored bytes
// cannot be decoded into V.
func (t *Typed[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V

	data, err := t.store.Get(ctx, key)
	if err != nil {
		return zero, err
	}

	v, err := t.marshaler.Unmarshal(data)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// Set encodes value and stores it under key.
func (t *Typed[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := t.marshaler.Marshal(value)
	if err != nil {
		return err
	}
	return t.store.Set(ctx, key, data, ttl)
}

// Delete removes the given keys from the underlying store.
func (t *Typed[V]) Delete(ctx context.Context, keys ...string) error {
	return t.store.Delete(ctx, keys...)
}
