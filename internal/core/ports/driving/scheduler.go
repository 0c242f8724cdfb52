package driving

import (
	"context"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// Scheduler runs source pipelines on fixed intervals.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// Tasks returns the current state of every scheduled task.
	Tasks(ctx context.Context) ([]domain.ScheduledTask, error)
}
