// Package mongo opens MongoDB connections with startup retries.
//
//	db, err := mongo.Open(ctx, mongo.Config{
//	    URI:      "mongodb://localhost:27017",
//	    Database: "postcache",
//	}, mongo.WithRetry(5, time.Second))
//
// [Healthcheck] and [Shutdown] return closures for readiness checks and
// server shutdown hooks, mirroring pkg/redis and pkg/db.
package mongo
