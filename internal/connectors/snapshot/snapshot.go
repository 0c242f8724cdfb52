// Package snapshot opens read-only copies of SQLite databases that another
// process may hold locked, such as a running browser's history file.
package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/logger"
)

// sidecars are copied alongside the main file when present so that
// uncheckpointed WAL content is visible in the snapshot.
var sidecars = []string{"-wal", "-journal"}

// DB is an open snapshot. Close removes the copy.
type DB struct {
	*sql.DB
	dir string
}

// Open copies the database at src into a private temporary directory and
// opens the copy. A missing src is reported as domain.ErrSourceUnreachable.
func Open(src string) (*DB, error) {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", domain.ErrSourceUnreachable, src)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnreachable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrSourceUnreachable, src)
	}

	dir, err := os.MkdirTemp("", "dself-snapshot-*")
	if err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	dst := filepath.Join(dir, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: copy %s: %w", domain.ErrSourceUnreachable, src, err)
	}
	for _, suffix := range sidecars {
		if _, err := os.Stat(src + suffix); err != nil {
			continue
		}
		if err := copyFile(src+suffix, dst+suffix); err != nil {
			logger.Debug("snapshot: skipping %s: %v", src+suffix, err)
		}
	}

	db, err := sql.Open("sqlite", dst)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	db.SetMaxOpenConns(1)

	logger.Debug("snapshot: %s -> %s", src, dst)
	return &DB{DB: db, dir: dir}, nil
}

// Dir returns the temporary directory holding the copy.
func (d *DB) Dir() string {
	return d.dir
}

// Close closes the database and removes the copy.
func (d *DB) Close() error {
	err := d.DB.Close()
	if rmErr := os.RemoveAll(d.dir); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
