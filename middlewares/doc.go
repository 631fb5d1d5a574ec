// Package middlewares provides net/http middleware for the API server.
//
// # Request ID
//
// RequestID assigns a unique ID to each request for tracing and debugging.
// It checks incoming headers for existing IDs or generates a UUID.
// Use RequestIDExtractor() with logger.New for automatic request_id in all logs:
//
//	log := logger.New(os.Stdout, cfg.Log, middlewares.RequestIDExtractor())
//	app := server.New(
//	    server.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover catches panics, logs them with a stack trace and hands a
// PanicError to a PanicHandler that writes the response:
//
//	middlewares.Recover(
//	    middlewares.WithRecoverLogger(log),
//	    middlewares.WithRecoverHandler(func(w http.ResponseWriter, r *http.Request, pe *middlewares.PanicError) {
//	        server.WriteError(w, r, pe)
//	    }),
//	)
//
// # Logger
//
// Logger writes one structured log line per completed request with method,
// path, status, response size and duration.
package middlewares
