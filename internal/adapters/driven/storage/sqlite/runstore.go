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

var _ driven.RunStore = (*runStore)(nil)

type runStore struct {
	store *Store
}

const runColumns = `id, source, state, extracted, submitted, persisted, destination, path, error, started_at, ended_at`

// SaveRun upserts a report. Source and start time are fixed on first insert.
func (s *runStore) SaveRun(ctx context.Context, report *domain.RunReport) error {
	if report == nil || report.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			extracted = excluded.extracted,
			submitted = excluded.submitted,
			persisted = excluded.persisted,
			destination = excluded.destination,
			path = excluded.path,
			error = excluded.error,
			ended_at = excluded.ended_at`,
		report.ID, string(report.Source), string(report.State),
		report.Extracted, report.Submitted, report.Persisted, string(report.Destination),
		text(report.Path), text(report.Error),
		stamp(report.StartedAt), stamp(report.EndedAt))
	if err != nil {
		return fmt.Errorf("save run %s: %w", report.ID, err)
	}
	return nil
}

// ListRuns returns reports newest first, filtered to source unless it is
// empty. A non-positive limit means all.
func (s *runStore) ListRuns(ctx context.Context, source domain.SourceType, limit int) ([]domain.RunReport, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, string(source))
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.RunReport
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// LastRun returns nil when source has never run.
func (s *runStore) LastRun(ctx context.Context, source domain.SourceType) (*domain.RunReport, error) {
	report, err := scanRun(s.store.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE source = ? ORDER BY started_at DESC LIMIT 1`,
		string(source)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func scanRun(r row) (domain.RunReport, error) {
	var (
		report         domain.RunReport
		source, state  string
		dest           string
		path, msg      sql.Null[string]
		started, ended stamp
	)
	err := r.Scan(&report.ID, &source, &state,
		&report.Extracted, &report.Submitted, &report.Persisted,
		&dest, &path, &msg, &started, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return report, err
	}
	if err != nil {
		return report, fmt.Errorf("scan run: %w", err)
	}

	report.Source = domain.SourceType(source)
	report.State = domain.RunState(state)
	report.Destination = domain.Destination(dest)
	report.Path = path.V
	report.Error = msg.V
	report.StartedAt = time.Time(started)
	report.EndedAt = time.Time(ended)
	return report, nil
}
