package postgres

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/custodia-labs/dself/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/dself/internal/logger"
)

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s, migrations.FS)
}

// RunMigrations applies all pending goose migrations from fsys.
func RunMigrations(ctx context.Context, s *Store, fsys fs.FS) error {
	// goose needs a *sql.DB; wrap the pool so the configured password applies.
	sqlDB := stdlib.OpenDBFromPool(s.pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", r.Source.Version, r.Source.Path, r.Error)
		}
		logger.WithFields(logger.Fields{
			"version":  r.Source.Version,
			"file":     r.Source.Path,
			"duration": r.Duration,
		}).Info("migration applied")
	}

	if len(results) == 0 {
		logger.Debug("all migrations already applied")
	}
	return nil
}
