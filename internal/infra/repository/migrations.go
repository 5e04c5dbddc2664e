package repository

import (
	"context"
	"embed"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"trimline/internal/pkg/errs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies the embedded schema files in lexical order. Statements are
// idempotent, so re-running on startup is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return errs.Wrap(err, "failed to read embedded migrations")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return errs.Wrap(err, "failed to read migration "+name)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return errs.Wrap(err, "failed to apply migration "+name)
		}
	}
	return nil
}
