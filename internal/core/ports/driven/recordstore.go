package driven

import (
	"context"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// RemoteStore is a remote structured store holding one table per source.
// Each row is the JSON form of a record.
type RemoteStore interface {
	// Insert appends rows and returns how many the store accepted.
	Insert(ctx context.Context, table string, rows []domain.Record) (int, error)

	// Upsert writes rows keyed by keyColumn, replacing existing rows with
	// the same key. Returns how many rows the store accepted.
	Upsert(ctx context.Context, table string, rows []domain.Record, keyColumn string) (int, error)

	// Select reads at most limit rows of the given columns and returns
	// the number of rows read. Used as a reachability probe.
	Select(ctx context.Context, table, columns string, limit int) (int, error)

	// Close releases connections held by the store.
	Close() error
}
