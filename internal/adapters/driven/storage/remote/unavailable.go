package remote

import (
	"context"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// unavailable stands in for a configured store that could not be reached
// when it was opened. Every call fails, so batches fall back to local files.
type unavailable struct {
	err error
}

// Unavailable returns a store whose operations all fail with err.
func Unavailable(err error) driven.RemoteStore {
	return unavailable{err: err}
}

func (u unavailable) Insert(context.Context, string, []domain.Record) (int, error) {
	return 0, u.err
}

func (u unavailable) Upsert(context.Context, string, []domain.Record, string) (int, error) {
	return 0, u.err
}

func (u unavailable) Select(context.Context, string, string, int) (int, error) {
	return 0, u.err
}

func (u unavailable) Close() error {
	return nil
}
