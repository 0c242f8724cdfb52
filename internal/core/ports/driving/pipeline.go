package driving

import (
	"context"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// PipelineRunner runs source pipelines: extract, normalise, sanitise, persist.
type PipelineRunner interface {
	// Sources returns the registered sources in run order.
	Sources() []domain.SourceType

	// Run executes one source's pipeline. An unreachable source or a
	// degraded write is reported in the RunReport; the error is non-nil
	// only when the source is not registered.
	Run(ctx context.Context, source domain.SourceType) (domain.RunReport, error)

	// RunAll runs every registered source sequentially.
	RunAll(ctx context.Context) []domain.RunReport

	// History returns recent reports for a source, newest first.
	// An empty source returns reports for every source.
	History(ctx context.Context, source domain.SourceType, limit int) ([]domain.RunReport, error)
}

// Migrator applies the remote store schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}
