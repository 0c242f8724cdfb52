package services

import (
	"context"
	"time"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
	"github.com/custodia-labs/dself/internal/logger"
)

// SourcePipeline is one source's extract, normalise, sanitise, persist run.
type SourcePipeline interface {
	// Spec describes the source.
	Spec() domain.SourceSpec

	// Execute advances report through the run states. savedAt is stamped
	// on every record of the run.
	Execute(ctx context.Context, report *domain.RunReport, savedAt time.Time)
}

// Pipeline binds a source adapter to the persistence gateway.
type Pipeline[Raw any, R domain.Sanitisable[R]] struct {
	adapter driven.SourceAdapter[Raw, R]
	gateway *Gateway
}

// NewPipeline creates a pipeline for adapter.
func NewPipeline[Raw any, R domain.Sanitisable[R]](
	adapter driven.SourceAdapter[Raw, R],
	gateway *Gateway,
) *Pipeline[Raw, R] {
	return &Pipeline[Raw, R]{adapter: adapter, gateway: gateway}
}

// Spec implements SourcePipeline.
func (p *Pipeline[Raw, R]) Spec() domain.SourceSpec {
	return p.adapter.Spec()
}

// Execute implements SourcePipeline.
func (p *Pipeline[Raw, R]) Execute(ctx context.Context, report *domain.RunReport, savedAt time.Time) {
	spec := p.adapter.Spec()

	report.State = domain.RunExtracting
	raws, err := p.adapter.Extract(ctx)
	if err != nil {
		report.State = domain.RunUnreachable
		report.Destination = domain.DestinationNone
		report.Error = err.Error()
		logger.Warn("%s: %v", spec.Type, err)
		return
	}
	report.Extracted = len(raws)
	logger.Debug("%s: extracted %d items", spec.Type, len(raws))

	if len(raws) == 0 {
		logger.Info("%s: no records found", spec.Type)
		report.Destination = domain.DestinationNone
		report.State = domain.RunDone
		return
	}

	report.State = domain.RunNormalising
	records := make([]R, len(raws))
	for i, raw := range raws {
		records[i] = p.adapter.Normalise(raw, savedAt)
	}

	report.State = domain.RunSanitising
	for i := range records {
		records[i] = records[i].Sanitised()
	}
	if f, ok := p.adapter.(driven.BatchFilter[R]); ok {
		before := len(records)
		records = f.Filter(records)
		if dropped := before - len(records); dropped > 0 {
			logger.Debug("%s: filtered %d records", spec.Type, dropped)
		}
	}

	report.State = domain.RunPersisting
	outcome := p.gateway.Persist(ctx, spec, domain.Records(records))
	report.Destination = outcome.Destination
	report.Submitted = outcome.Submitted
	report.Persisted = outcome.Accepted
	report.Path = outcome.Path
	if outcome.Err != nil {
		report.Error = outcome.Err.Error()
	}
	report.State = domain.RunDone
}
