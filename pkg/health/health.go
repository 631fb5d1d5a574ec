package health

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 3 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusDegraded indicates only optional checks failed.
	// The service keeps accepting traffic.
	StatusDegraded = "degraded"
	// StatusUnhealthy indicates a required check failed.
	StatusUnhealthy = "unhealthy"
)

var (
	// ErrCheckFailed is reported by Response.Err when a required check failed.
	ErrCheckFailed = errors.New("health: check failed")
	// ErrCheckTimeout is joined into a check's error when it outlives the timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)

// CheckFunc is the standard health check function signature.
// It matches the Healthcheck closures in pkg/db, pkg/mongo and pkg/redis.
type CheckFunc func(ctx context.Context) error

// Checks is a map of named health check functions.
type Checks map[string]CheckFunc

// Response represents a health check response.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check represents the status of a single health check.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

type config struct {
	logger   *slog.Logger
	optional []string
	timeout  time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout sets the timeout for all checks.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOptional marks checks whose failure degrades the service instead of
// making it unready. A cache the service can run without is the usual case.
func WithOptional(names ...string) Option {
	return func(c *config) {
		c.optional = append(c.optional, names...)
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes all checks concurrently and aggregates the result.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	return runChecks(ctx, checks, newConfig(opts...))
}

func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]Check, len(checks))
	)

	// Check errors are collected per name, so the group itself never fails.
	var g errgroup.Group
	for name, check := range checks {
		g.Go(func() error {
			result := Check{
				Status:   StatusHealthy,
				Optional: slices.Contains(cfg.optional, name),
			}

			if err := check(ctx); err != nil {
				if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
					err = errors.Join(ErrCheckTimeout, err)
				}
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Bool("optional", result.Optional),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return &Response{
		Status: aggregate(results),
		Checks: results,
	}
}

func aggregate(results map[string]Check) string {
	status := StatusHealthy
	for _, r := range results {
		if r.Status != StatusUnhealthy {
			continue
		}
		if !r.Optional {
			return StatusUnhealthy
		}
		status = StatusDegraded
	}
	return status
}

// Err reports ErrCheckFailed when the response is unhealthy.
func (r *Response) Err() error {
	if r.Status == StatusUnhealthy {
		return ErrCheckFailed
	}
	return nil
}
