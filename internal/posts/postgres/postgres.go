// Package postgres stores posts and comments in PostgreSQL.
//
// Rows carry an internal BIGINT key next to the public UUID. Comments
// reference their post by the internal key, so lookups by public post id
// resolve the key first.
package postgres

import (
	"context"
	"embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/postcache/internal/posts"
	"github.com/dmitrymomot/postcache/pkg/db"
)

// Migrations holds the schema, applied with db.Migrate(ctx, pool, Migrations, MigrationsDir, ...).
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	db.TxBeginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// now returns the current time at the precision PostgreSQL stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// storeError maps a missing row to notFound and anything else to ErrPersistence.
func storeError(err, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	if errors.Is(err, posts.ErrNotFound) {
		return err
	}
	return errors.Join(posts.ErrPersistence, err)
}
