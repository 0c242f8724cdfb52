package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
	"github.com/custodia-labs/dself/internal/core/ports/driving"
	"github.com/custodia-labs/dself/internal/logger"
)

// Ensure Runner implements the interface.
var _ driving.PipelineRunner = (*Runner)(nil)

// Runner runs registered source pipelines and records their reports.
type Runner struct {
	runs     driven.RunStore
	observer driven.RunObserver
	now      func() time.Time

	mu        sync.RWMutex
	pipelines map[domain.SourceType]SourcePipeline
	order     []domain.SourceType
}

// NewRunner creates a runner. runs and observer are optional.
func NewRunner(runs driven.RunStore, observer driven.RunObserver) *Runner {
	return &Runner{
		runs:      runs,
		observer:  observer,
		now:       time.Now,
		pipelines: make(map[domain.SourceType]SourcePipeline),
	}
}

// Register adds a pipeline. Registering a source twice replaces the
// earlier pipeline and keeps its position.
func (r *Runner) Register(p SourcePipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()

	source := p.Spec().Type
	if _, exists := r.pipelines[source]; !exists {
		r.order = append(r.order, source)
	}
	r.pipelines[source] = p
}

// Sources implements driving.PipelineRunner.
func (r *Runner) Sources() []domain.SourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SourceType, len(r.order))
	copy(out, r.order)
	return out
}

// Specs returns the persistence spec of each registered source in run order.
func (r *Runner) Specs() []domain.SourceSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SourceSpec, 0, len(r.order))
	for _, source := range r.order {
		out = append(out, r.pipelines[source].Spec())
	}
	return out
}

// Run implements driving.PipelineRunner.
func (r *Runner) Run(ctx context.Context, source domain.SourceType) (domain.RunReport, error) {
	r.mu.RLock()
	p, ok := r.pipelines[source]
	r.mu.RUnlock()
	if !ok {
		return domain.RunReport{}, fmt.Errorf("%w: %s", domain.ErrUnknownSource, source)
	}

	logger.Section(fmt.Sprintf("Run %s", source))

	started := r.now()
	report := domain.RunReport{
		ID:          uuid.NewString(),
		Source:      source,
		State:       domain.RunIdle,
		Destination: domain.DestinationNone,
		StartedAt:   started,
	}

	p.Execute(ctx, &report, started)
	report.EndedAt = r.now()

	r.record(ctx, &report)
	return report, nil
}

// RunAll implements driving.PipelineRunner. A failing source does not
// stop the remaining ones.
func (r *Runner) RunAll(ctx context.Context) []domain.RunReport {
	sources := r.Sources()
	reports := make([]domain.RunReport, 0, len(sources))
	for _, source := range sources {
		if ctx.Err() != nil {
			break
		}
		report, err := r.Run(ctx, source)
		if err != nil {
			logger.Error("run %s: %v", source, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports
}

// History implements driving.PipelineRunner.
func (r *Runner) History(ctx context.Context, source domain.SourceType, limit int) ([]domain.RunReport, error) {
	if r.runs == nil {
		return nil, nil
	}
	return r.runs.ListRuns(ctx, source, limit)
}

func (r *Runner) record(ctx context.Context, report *domain.RunReport) {
	logger.WithFields(logger.Fields{
		"run_id":      report.ID,
		"source":      report.Source,
		"state":       report.State,
		"extracted":   report.Extracted,
		"persisted":   report.Persisted,
		"destination": report.Destination,
		"duration":    report.Duration().String(),
	}).Debug("run finished")

	if r.runs != nil {
		if err := r.runs.SaveRun(ctx, report); err != nil {
			logger.Warn("save run %s: %v", report.ID, err)
		}
	}
	if r.observer != nil {
		r.observer.ObserveRun(*report)
	}
}
