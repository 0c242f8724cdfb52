package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
	"github.com/custodia-labs/dself/internal/logger"
)

// Gateway persists sanitised batches. Batches go to the remote store when
// one is configured, and to a local JSON file otherwise or when the remote
// write fails. Persist never returns an error: every batch ends up either
// in the remote store, in a local file, or is reported as lost.
type Gateway struct {
	remote   driven.RemoteStore
	files    driven.FileWriter
	validate bool
	now      func() time.Time
}

// NewGateway creates a gateway. A nil remote selects local-only persistence.
// When validate is set, a one-row read of the target table precedes every
// remote write.
func NewGateway(remote driven.RemoteStore, files driven.FileWriter, validate bool) *Gateway {
	return &Gateway{
		remote:   remote,
		files:    files,
		validate: validate,
		now:      time.Now,
	}
}

// RemoteConfigured reports whether batches are offered to a remote store.
func (g *Gateway) RemoteConfigured() bool {
	return g.remote != nil
}

// Persist writes records for the source described by spec.
func (g *Gateway) Persist(ctx context.Context, spec domain.SourceSpec, records []domain.Record) domain.PersistOutcome {
	if len(records) == 0 {
		return domain.PersistOutcome{Destination: domain.DestinationNone}
	}

	if g.remote == nil {
		path, err := g.files.Write(spec.DataDir, spec.FilePrefix, records, g.now())
		if err != nil {
			logger.Error("%s: local save failed: %v", spec.Type, err)
			return domain.PersistOutcome{Destination: domain.DestinationNone, Err: err}
		}
		logger.Info("%s: saved %d records to %s", spec.Type, len(records), path)
		return domain.PersistOutcome{
			Destination: domain.DestinationLocal,
			Accepted:    len(records),
			Path:        path,
		}
	}

	submit := records
	if spec.RemoteLimit > 0 && len(submit) > spec.RemoteLimit {
		logger.Info("%s: submitting first %d of %d records to %s", spec.Type, spec.RemoteLimit, len(records), spec.Table)
		submit = submit[:spec.RemoteLimit]
	}

	accepted, err := g.writeRemote(ctx, spec, submit)
	if err != nil {
		logger.Warn("%s: remote write to %s failed: %v", spec.Type, spec.Table, err)
		return g.fallback(spec, records, len(submit), err)
	}

	logger.WithFields(logger.Fields{
		"source":   spec.Type,
		"table":    spec.Table,
		"mode":     spec.Mode.String(),
		"accepted": accepted,
	}).Info("batch persisted")

	return domain.PersistOutcome{
		Destination: domain.DestinationRemote,
		Submitted:   len(submit),
		Accepted:    accepted,
	}
}

func (g *Gateway) writeRemote(ctx context.Context, spec domain.SourceSpec, rows []domain.Record) (int, error) {
	if g.validate {
		if _, err := g.remote.Select(ctx, spec.Table, domain.KeyColumn, 1); err != nil {
			return 0, fmt.Errorf("%w: probe %s: %w", domain.ErrRemoteUnavailable, spec.Table, err)
		}
	}

	var (
		accepted int
		err      error
	)
	switch spec.Mode {
	case domain.PersistUpsert:
		for _, r := range rows {
			if r.Key() == "" {
				return 0, fmt.Errorf("upsert %s: %w", spec.Table, domain.ErrMissingKey)
			}
		}
		accepted, err = g.remote.Upsert(ctx, spec.Table, rows, domain.KeyColumn)
	default:
		accepted, err = g.remote.Insert(ctx, spec.Table, rows)
	}
	if err != nil {
		return 0, err
	}
	if accepted < len(rows) {
		return accepted, fmt.Errorf("%w: %d of %d rows", domain.ErrPartialWrite, accepted, len(rows))
	}
	return accepted, nil
}

// fallback writes the full batch to a failed_ prefixed local file.
func (g *Gateway) fallback(spec domain.SourceSpec, records []domain.Record, submitted int, cause error) domain.PersistOutcome {
	path, err := g.files.Write(spec.DataDir, domain.FailedPrefix+spec.FilePrefix, records, g.now())
	if err != nil {
		logger.Error("%s: fallback save failed, batch lost: %v", spec.Type, err)
		return domain.PersistOutcome{
			Destination: domain.DestinationNone,
			Submitted:   submitted,
			Err:         errors.Join(cause, err),
		}
	}

	logger.Warn("%s: saved %d records to fallback file %s", spec.Type, len(records), path)
	return domain.PersistOutcome{
		Destination: domain.DestinationFallback,
		Submitted:   submitted,
		Accepted:    len(records),
		Path:        path,
		Err:         cause,
	}
}
