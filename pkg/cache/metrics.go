package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation results reported by Instrumented.
const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultOK    = "ok"
	resultError = "error"
)

// Instrumented records Prometheus metrics for every call to the wrapped Store.
//
// Exposed metrics (with the configured namespace):
//
//	{ns}_cache_operations_total{operation,result}
//	{ns}_cache_operation_duration_seconds{operation}
//	{ns}_cache_invalidated_keys_total
type Instrumented struct {
	next        Store
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	invalidated prometheus.Counter
}

// NewInstrumented wraps next and registers its collectors on reg.
// Registering twice on the same registry panics, as with any Prometheus collector.
func NewInstrumented(next Store, reg prometheus.Registerer, namespace string) *Instrumented {
	factory := promauto.With(reg)

	return &Instrumented{
		next: next,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations by result.",
		}, []string{"operation", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_operation_duration_seconds",
			Help:      "Cache operation latency in seconds.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		invalidated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidated_keys_total",
			Help:      "Total number of keys passed to Delete.",
		}),
	}
}

// Get retrieves a value and records hit, miss or error.
func (m *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := m.next.Get(ctx, key)
	m.duration.WithLabelValues("get").Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		m.operations.WithLabelValues("get", resultHit).Inc()
	case errors.Is(err, ErrNotFound):
		m.operations.WithLabelValues("get", resultMiss).Inc()
	default:
		m.operations.WithLabelValues("get", resultError).Inc()
	}
	return data, err
}

// Set stores a value and records the outcome.
func (m *Instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := m.next.Set(ctx, key, value, ttl)
	m.duration.WithLabelValues("set").Observe(time.Since(start).Seconds())
	m.operations.WithLabelValues("set", outcome(err)).Inc()
	return err
}

// Delete removes keys and records the outcome.
func (m *Instrumented) Delete(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := m.next.Delete(ctx, keys...)
	m.duration.WithLabelValues("delete").Observe(time.Since(start).Seconds())
	m.operations.WithLabelValues("delete", outcome(err)).Inc()
	if err == nil {
		m.invalidated.Add(float64(len(keys)))
	}
	return err
}

// Close closes the wrapped store.
func (m *Instrumented) Close() error {
	return m.next.Close()
}

func outcome(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}

var _ Store = (*Instrumented)(nil)
