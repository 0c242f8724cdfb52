package driven

import (
	"context"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// RunStore persists run reports.
type RunStore interface {
	// SaveRun creates or updates a report by ID.
	SaveRun(ctx context.Context, report *domain.RunReport) error

	// ListRuns returns the most recent reports, newest first.
	// An empty source lists runs of every source.
	ListRuns(ctx context.Context, source domain.SourceType, limit int) ([]domain.RunReport, error)

	// LastRun returns the newest report for a source.
	// Returns nil and no error if the source has never run.
	LastRun(ctx context.Context, source domain.SourceType) (*domain.RunReport, error)
}

// RunObserver receives every finished run report.
type RunObserver interface {
	ObserveRun(report domain.RunReport)
}
