package store

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/royalton/portal/pkg/db"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations is the goose migration set rooted at its directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate applies, rolls back or reports the portal schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, dir db.Direction, table string, log *slog.Logger) error {
	return db.Migrate(ctx, pool, Migrations(), dir, table, log)
}
