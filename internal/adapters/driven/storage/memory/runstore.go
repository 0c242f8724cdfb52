package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.RunReport
}

// NewRunStore creates an empty run store.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]domain.RunReport)}
}

// SaveRun creates or updates a report by ID.
func (s *RunStore) SaveRun(_ context.Context, report *domain.RunReport) error {
	if report == nil || report.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[report.ID] = *report
	return nil
}

// ListRuns returns the most recent reports, newest first.
func (s *RunStore) ListRuns(_ context.Context, source domain.SourceType, limit int) ([]domain.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RunReport, 0, len(s.runs))
	for _, r := range s.runs {
		if source == "" || r.Source == source {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LastRun returns the newest report for a source.
func (s *RunStore) LastRun(ctx context.Context, source domain.SourceType) (*domain.RunReport, error) {
	runs, err := s.ListRuns(ctx, source, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}
