package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerOption configures the circuit breaker decorator.
type BreakerOption func(*breakerOptions)

type breakerOptions struct {
	logger           *slog.Logger
	name             string
	maxRequests      uint32
	interval         time.Duration
	timeout          time.Duration
	minRequests      uint32
	failureThreshold float64
}

func defaultBreakerOptions() *breakerOptions {
	return &breakerOptions{
		name:             "cache",
		maxRequests:      5,
		interval:         30 * time.Second,
		timeout:          10 * time.Second,
		minRequests:      5,
		failureThreshold: 0.5,
		logger:           slog.New(slog.DiscardHandler),
	}
}

// WithBreakerName sets the breaker name reported in state change logs.
func WithBreakerName(name string) BreakerOption {
	return func(o *breakerOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithBreakerTimeout sets how long the breaker stays open before letting
// trial requests through.
// Default: 10 seconds.
func WithBreakerTimeout(d time.Duration) BreakerOption {
	return func(o *breakerOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithBreakerInterval sets the cyclic period after which failure counts
// are cleared while the breaker is closed.
// Default: 30 seconds.
func WithBreakerInterval(d time.Duration) BreakerOption {
	return func(o *breakerOptions) {
		o.interval = d
	}
}

// WithBreakerThreshold sets the failure ratio that trips the breaker once
// at least minRequests requests were observed.
// Default: 0.5 over 5 requests.
func WithBreakerThreshold(ratio float64, minRequests uint32) BreakerOption {
	return func(o *breakerOptions) {
		if ratio > 0 {
			o.failureThreshold = ratio
		}
		if minRequests > 0 {
			o.minRequests = minRequests
		}
	}
}

// WithBreakerLogger sets the logger for state transitions.
func WithBreakerLogger(l *slog.Logger) BreakerOption {
	return func(o *breakerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Breaker guards a Store with a circuit breaker.
// While the breaker is open every call fails fast with ErrUnavailable
// instead of waiting on an unreachable backend. Cache misses count as
// successful calls.
type Breaker struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next with a circuit breaker.
func NewBreaker(next Store, opts ...BreakerOption) *Breaker {
	o := defaultBreakerOptions()
	for _, opt := range opts {
		opt(o)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        o.name,
		MaxRequests: o.maxRequests,
		Interval:    o.interval,
		Timeout:     o.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < o.minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= o.failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			o.logger.Warn("cache circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})

	return &Breaker{next: next, cb: cb}
}

// Get retrieves a value through the breaker.
func (b *Breaker) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.Get(ctx, key)
	})
	if err != nil {
		return nil, breakerError(err)
	}
	data, _ := v.([]byte)
	return data, nil
}

// Set stores a value through the breaker.
func (b *Breaker) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Set(ctx, key, value, ttl)
	})
	return breakerError(err)
}

// Delete removes keys through the breaker.
func (b *Breaker) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Delete(ctx, keys...)
	})
	return breakerError(err)
}

// Close closes the wrapped store.
func (b *Breaker) Close() error {
	return b.next.Close()
}

// State reports the current breaker state ("closed", "half-open", "open").
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// breakerError maps rejections by the breaker itself to ErrUnavailable.
func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrUnavailable, err)
	}
	return err
}

var _ Store = (*Breaker)(nil)
