package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/postcache/pkg/health"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// Default health and metrics paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
	defaultMetricsPath   = "/metrics"
)

// Handler declares routes on a router.
//
//	func (h *PostsHandler) Routes(r chi.Router) {
//	    r.Get("/posts/{id}", h.getPost)
//	}
type Handler interface {
	Routes(r chi.Router)
}

// Middleware wraps an http.Handler.
type Middleware func(next http.Handler) http.Handler

// App wires middleware, handlers, probes and metrics into one router.
// App is immutable after creation; all configuration is done via New.
type App struct {
	router         chi.Router
	logger         *slog.Logger
	health         *healthConfig
	metricsHandler http.Handler
	metricsPath    string
	middlewares    []Middleware
	handlers       []Handler
}

// New creates an App with the given options.
//
//	app := server.New(
//	    server.WithLogger(log),
//	    server.WithMiddleware(middlewares.RequestID(), middlewares.Logger(log)),
//	    server.WithHandlers(posts.NewHandler(svc)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:      chi.NewRouter(),
		logger:      slog.New(slog.DiscardHandler),
		metricsPath: defaultMetricsPath,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run starts the HTTP server on addr and blocks until shutdown.
//
//	err := app.Run(":3000",
//	    server.Logger(log),
//	    server.ShutdownHook(db.Shutdown(pool)),
//	)
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}

	return runServer(runtimeConfig{
		handler:         a,
		address:         addr,
		listener:        cfg.listener,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

func (a *App) setupRoutes() {
	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, ErrNotFound("resource not found"))
	})
	a.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"))
	})

	for _, mw := range a.middlewares {
		a.router.Use(mw)
	}

	if a.health != nil {
		a.router.Get(a.health.livenessPath, health.LivenessHandler())
		a.router.Get(a.health.readinessPath, health.ReadinessHandler(
			a.health.checks,
			health.WithOptional(a.health.optional...),
			health.WithLogger(a.logger),
		))
	}

	if a.metricsHandler != nil {
		a.router.Handle(a.metricsPath, a.metricsHandler)
	}

	for _, h := range a.handlers {
		h.Routes(a.router)
	}
}

type healthConfig struct {
	checks        health.Checks
	optional      []string
	livenessPath  string
	readinessPath string
}

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// A failing check makes the service unready.
//
//	server.WithReadinessCheck("store", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			c.checks[name] = fn
		}
	}
}

// WithOptionalCheck adds a named check whose failure only degrades readiness.
func WithOptionalCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			c.checks[name] = fn
			c.optional = append(c.optional, name)
		}
	}
}
