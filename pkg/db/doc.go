// Package db provides PostgreSQL utilities on top of [github.com/jackc/pgx/v5/pgxpool].
//
// It covers pool setup with startup retries, a health check closure,
// transactions and goose migrations from an embedded filesystem.
//
// # Configuration
//
// [Config] is loaded from environment variables:
//
//	STORE_URI                   - PostgreSQL connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - Pool health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 2s)
//	DATABASE_MIGRATIONS_TABLE   - Goose version table (default: schema_migrations)
//
// # Usage
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	if err := db.Migrate(ctx, pool, migrations, "migrations", cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//
// [Healthcheck] and [Shutdown] return closures for readiness checks and
// server shutdown hooks.
//
// # Transactions
//
// [WithTx] commits when fn returns nil and rolls back otherwise, including
// on panic:
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		_, err := tx.Exec(ctx, "DELETE FROM comments WHERE post_id = $1", id)
//		return err
//	})
//
// # Error Handling
//
// Errors are wrapped with [errors.Join] around the sentinels in errors.go,
// so both the sentinel and the driver error match [errors.Is].
package db
