package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RemoteStore = (*RecordStore)(nil)

// Row is a stored record in its JSON object form.
type Row map[string]any

// RecordStore is an in-memory implementation of driven.RemoteStore.
// It backs --dry-run and tests.
type RecordStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
	nextID map[string]int64

	// SelectErr, when set, is returned by Select.
	SelectErr error
	// WriteErr, when set, is returned by Insert and Upsert.
	WriteErr error
	// MaxAccept, when positive, caps how many rows a single write accepts.
	MaxAccept int
}

// NewRecordStore creates an empty store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		tables: make(map[string][]Row),
		nextID: make(map[string]int64),
	}
}

// Insert appends rows, assigning a surrogate id to rows without one.
func (s *RecordStore) Insert(_ context.Context, table string, rows []domain.Record) (int, error) {
	if s.WriteErr != nil {
		return 0, s.WriteErr
	}
	converted, err := toRows(rows)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	converted = s.cap(converted)
	for _, row := range converted {
		if _, ok := row[domain.KeyColumn]; !ok {
			s.nextID[table]++
			row[domain.KeyColumn] = s.nextID[table]
		}
		s.tables[table] = append(s.tables[table], row)
	}
	return len(converted), nil
}

// Upsert replaces rows whose keyColumn matches, appending the rest.
func (s *RecordStore) Upsert(_ context.Context, table string, rows []domain.Record, keyColumn string) (int, error) {
	if s.WriteErr != nil {
		return 0, s.WriteErr
	}
	converted, err := toRows(rows)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	converted = s.cap(converted)
	for _, row := range converted {
		key, ok := row[keyColumn]
		if !ok || key == "" {
			return 0, fmt.Errorf("upsert %s: %w", table, domain.ErrMissingKey)
		}
		replaced := false
		for i, existing := range s.tables[table] {
			if existing[keyColumn] == key {
				s.tables[table][i] = row
				replaced = true
				break
			}
		}
		if !replaced {
			s.tables[table] = append(s.tables[table], row)
		}
	}
	return len(converted), nil
}

// Select returns how many rows a read of at most limit rows yields.
func (s *RecordStore) Select(_ context.Context, table, _ string, limit int) (int, error) {
	if s.SelectErr != nil {
		return 0, s.SelectErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return min(len(s.tables[table]), limit), nil
}

// Close implements driven.RemoteStore.
func (s *RecordStore) Close() error {
	return nil
}

// Rows returns a copy of a table's rows in write order.
func (s *RecordStore) Rows(table string) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Row, len(s.tables[table]))
	copy(out, s.tables[table])
	return out
}

// Count returns the number of rows in a table.
func (s *RecordStore) Count(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

func (s *RecordStore) cap(rows []Row) []Row {
	if s.MaxAccept > 0 && len(rows) > s.MaxAccept {
		return rows[:s.MaxAccept]
	}
	return rows
}

func toRows(records []domain.Record) ([]Row, error) {
	out := make([]Row, 0, len(records))
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode %s record: %w", r.Source(), err)
		}
		var row Row
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", r.Source(), err)
		}
		out = append(out, row)
	}
	return out, nil
}
