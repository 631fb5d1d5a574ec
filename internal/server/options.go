package server

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/postcache/pkg/health"
)

// Option configures the App.
type Option func(*App)

// WithLogger sets the logger used for probes and server lifecycle.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMiddleware appends global middleware. Middleware runs in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		for _, m := range mw {
			if m != nil {
				a.middlewares = append(a.middlewares, m)
			}
		}
	}
}

// WithHandlers registers route handlers.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		for _, handler := range h {
			if handler != nil {
				a.handlers = append(a.handlers, handler)
			}
		}
	}
}

// WithHealthChecks enables liveness and readiness endpoints.
//
//	server.WithHealthChecks(
//	    server.WithReadinessCheck("store", db.Healthcheck(pool)),
//	    server.WithOptionalCheck("cache", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		if a.health == nil {
			a.health = &healthConfig{
				checks:        make(health.Checks),
				livenessPath:  defaultLivenessPath,
				readinessPath: defaultReadinessPath,
			}
		}
		for _, opt := range opts {
			opt(a.health)
		}
	}
}

// WithMetrics mounts a metrics handler, usually promhttp.HandlerFor.
// Defaults to "/metrics" when path is empty.
func WithMetrics(path string, h http.Handler) Option {
	return func(a *App) {
		if h == nil {
			return
		}
		if path != "" {
			a.metricsPath = path
		}
		a.metricsHandler = h
	}
}
