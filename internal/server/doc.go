// Package server hosts the HTTP surface: a chi router with global
// middleware, route handlers, health probes and a metrics endpoint, plus a
// runtime with graceful shutdown and ordered shutdown hooks.
//
//	app := server.New(
//	    server.WithLogger(log),
//	    server.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(middlewares.WithRecoverHandler(server.WritePanic)),
//	        middlewares.Logger(log),
//	    ),
//	    server.WithHandlers(posts.NewHandler(svc, log)),
//	    server.WithHealthChecks(
//	        server.WithReadinessCheck("store", db.Healthcheck(pool)),
//	        server.WithOptionalCheck("cache", redis.Healthcheck(client)),
//	    ),
//	    server.WithMetrics("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
//	)
//
//	err := app.Run(":3000",
//	    server.ShutdownTimeout(30*time.Second),
//	    server.ShutdownHook(db.Shutdown(pool)),
//	)
//
// Errors are rendered by [WriteError] as
//
//	{"status_code":404,"error":"Not Found","message":"post not found","request_id":"..."}
package server
