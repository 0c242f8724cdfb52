package driven

import (
	"context"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// SchedulerStore keeps scheduled pipeline tasks and their run results so a
// restarted scheduler resumes where it stopped.
type SchedulerStore interface {
	// GetTask returns the task with taskID, or nil when there is none.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask inserts or replaces a task.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// DeleteTask drops a task. Its results are kept until pruned.
	DeleteTask(ctx context.Context, taskID string) error

	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns up to limit results for a task, newest first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory keeps the newest keep results of every task.
	PruneHistory(ctx context.Context, keep int) error
}
