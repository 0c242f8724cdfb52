package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/custodia-labs/dself/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
	"github.com/custodia-labs/dself/internal/logger"
)

// DBName is the state database file name.
const DBName = "state.db"

// Store keeps run history and scheduler state in a single SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens dataDir/state.db and brings its schema up to date.
// An empty dataDir means ~/.dself/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("state dir: %w", err)
		}
		dataDir = filepath.Join(home, ".dself", "data")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}

	path := filepath.Join(dataDir, DBName)
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	// One writer keeps SQLITE_BUSY out of concurrent pipeline runs.
	db.SetMaxOpenConns(1)
	return &Store{db: db, path: path}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		logger.WithFields(logger.Fields{
			"version": r.Source.Version,
			"db":      "state",
		}).Debug("migration applied")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RunStore exposes run history.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// SchedulerStore exposes scheduled tasks and their results.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}
