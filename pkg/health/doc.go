// Package health provides HTTP handlers for liveness and readiness probes.
//
// [LivenessHandler] always reports OK while the process runs.
// [ReadinessHandler] executes a set of named [Checks] concurrently under a
// shared timeout and reports the aggregate status:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "store": db.Healthcheck(pool),
//	    "cache": redis.Healthcheck(client),
//	}, health.WithOptional("cache"), health.WithLogger(log)))
//
// A failing check marked with [WithOptional] yields "degraded" with status
// 200. Any other failure yields "unhealthy" with status 503.
//
// Responses are JSON by default:
//
//	{
//	  "status": "degraded",
//	  "checks": {
//	    "store": {"status": "healthy"},
//	    "cache": {"status": "unhealthy", "error": "connection refused", "optional": true}
//	  }
//	}
//
// Send Accept: text/plain or ?format=text for a plain body ("OK" or
// "Service Unavailable").
//
// # Error Handling
//
//   - [ErrCheckFailed] is returned by [Response.Err] for unhealthy results
//   - [ErrCheckTimeout] is joined into a check error when the timeout expires
package health
