package driven

import (
	"time"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// FileWriter writes a batch as a JSON array to a new file named
// {prefix}_{len(records)}_{YYYYmmdd_HHMMSS}.json in dir, creating dir
// when absent. It returns the written path.
type FileWriter interface {
	Write(dir, prefix string, records []domain.Record, at time.Time) (string, error)
}
