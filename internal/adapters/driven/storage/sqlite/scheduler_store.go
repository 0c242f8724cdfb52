package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

var _ driven.SchedulerStore = (*schedulerStore)(nil)

type schedulerStore struct {
	store *Store
}

const taskColumns = `id, source, interval_seconds, last_run, next_run, last_error, last_success, enabled`

// GetTask returns nil for an unknown ID.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	task, err := scanTask(s.store.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = ?`, taskID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ScheduledTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			interval_seconds = excluded.interval_seconds,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			enabled = excluded.enabled`,
		task.ID, string(task.Source), int64(task.Interval/time.Second),
		stamp(task.LastRun), stamp(task.NextRun), text(task.LastError),
		stamp(task.LastSuccess), task.Enabled)
	if err != nil {
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}
	return nil
}

func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM scheduled_tasks WHERE id = ?`, taskID); err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}
	return nil
}

func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO task_results (task_id, run_id, started_at, ended_at, success, error, items_processed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.TaskID, text(result.RunID), stamp(result.StartedAt), stamp(result.EndedAt),
		result.Success, text(result.Error), result.ItemsProcessed)
	if err != nil {
		return fmt.Errorf("record result for %s: %w", result.TaskID, err)
	}
	return nil
}

// GetTaskHistory returns up to limit results, newest first.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT task_id, run_id, started_at, ended_at, success, error, items_processed
		FROM task_results
		WHERE task_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("task history %s: %w", taskID, err)
	}
	defer rows.Close()

	var results []domain.TaskResult
	for rows.Next() {
		var (
			r              domain.TaskResult
			runID, msg     sql.Null[string]
			started, ended stamp
		)
		if err := rows.Scan(&r.TaskID, &runID, &started, &ended, &r.Success, &msg, &r.ItemsProcessed); err != nil {
			return nil, fmt.Errorf("scan task result: %w", err)
		}
		r.RunID = runID.V
		r.Error = msg.V
		r.StartedAt = time.Time(started)
		r.EndedAt = time.Time(ended)
		results = append(results, r)
	}
	return results, rows.Err()
}

// PruneHistory keeps the newest keep results of every task.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM task_results
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY started_at DESC, id DESC) AS rn
				FROM task_results
			) WHERE rn > ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune task history: %w", err)
	}
	return nil
}

func scanTask(r row) (domain.ScheduledTask, error) {
	var (
		task                        domain.ScheduledTask
		source                      string
		seconds                     int64
		lastRun, nextRun, succeeded stamp
		lastErr                     sql.Null[string]
	)
	err := r.Scan(&task.ID, &source, &seconds, &lastRun, &nextRun, &lastErr, &succeeded, &task.Enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return task, err
	}
	if err != nil {
		return task, fmt.Errorf("scan task: %w", err)
	}

	task.Source = domain.SourceType(source)
	task.Interval = time.Duration(seconds) * time.Second
	task.LastRun = time.Time(lastRun)
	task.NextRun = time.Time(nextRun)
	task.LastSuccess = time.Time(succeeded)
	task.LastError = lastErr.V
	return task, nil
}
