package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// SourceAdapter extracts raw items from one source and maps them to
// canonical records. Raw is the source's native item shape.
type SourceAdapter[Raw any, R domain.Sanitisable[R]] interface {
	// Spec describes where the source's records are persisted.
	Spec() domain.SourceSpec

	// Extract reads the source. A missing database, export file or
	// credential is reported as domain.ErrSourceUnreachable.
	Extract(ctx context.Context) ([]Raw, error)

	// Normalise maps one raw item to a record. savedAt is stamped on
	// every record of the run. Normalise never fails; absent fields
	// take documented defaults.
	Normalise(raw Raw, savedAt time.Time) R
}

// BatchFilter is implemented by adapters that drop records from a
// sanitised batch before persistence.
type BatchFilter[R domain.Record] interface {
	Filter(records []R) []R
}
