// Package localfile writes record batches to timestamped JSON files.
package localfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.FileWriter = (*Writer)(nil)

// FileTimeLayout is the timestamp suffix of a batch file name.
const FileTimeLayout = "20060102_150405"

const (
	dirPerm  = 0o755
	filePerm = 0o644

	// maxCollisions bounds the numeric suffixes tried for one second.
	maxCollisions = 1000
)

// Writer writes batches as pretty-printed JSON arrays.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// FileName returns the batch file name for prefix, count and time.
func FileName(prefix string, count int, at time.Time) string {
	return fmt.Sprintf("%s_%d_%s.json", prefix, count, at.Format(FileTimeLayout))
}

// Write implements driven.FileWriter. Files are never overwritten: a second
// batch in the same second gets a numeric suffix.
func (w *Writer) Write(dir, prefix string, records []domain.Record, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	data, err := encode(records)
	if err != nil {
		return "", err
	}

	name := FileName(prefix, len(records), at)
	base := name[:len(name)-len(".json")]
	for i := 0; i < maxCollisions; i++ {
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
		if errors.Is(err, fs.ErrExist) {
			name = fmt.Sprintf("%s_%d.json", base, i+1)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("write %s: too many files named %s", dir, base)
}

func encode(records []domain.Record) ([]byte, error) {
	if records == nil {
		records = []domain.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadBatch decodes a batch file into rows.
func ReadBatch(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rows, nil
}
