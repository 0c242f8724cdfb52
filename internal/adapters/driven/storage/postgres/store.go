// Package postgres implements the remote record store directly over a
// PostgreSQL connection, for deployments without a REST layer.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RemoteStore = (*Store)(nil)

// queryTimeout bounds every statement issued by the store.
const queryTimeout = 30 * time.Second

// Store writes records through a pgx connection pool. Rows are sent as a
// single JSON array and expanded server-side with json_populate_recordset,
// so column types come from the table definition.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL. When the URL carries no password, key is
// used as the password.
func Open(ctx context.Context, databaseURL, key string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if cfg.ConnConfig.Password == "" {
		cfg.ConnConfig.Password = key
	}

	cfg.ConnConfig.RuntimeParams["statement_timeout"] = "30000"
	cfg.MaxConns = 4
	cfg.MinConns = 0
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: pinging database: %w", domain.ErrRemoteUnavailable, err)
	}

	return &Store{pool: pool}, nil
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Insert implements driven.RemoteStore.
func (s *Store) Insert(ctx context.Context, table string, rows []domain.Record) (int, error) {
	return s.write(ctx, table, rows, "")
}

// Upsert implements driven.RemoteStore.
func (s *Store) Upsert(ctx context.Context, table string, rows []domain.Record, keyColumn string) (int, error) {
	return s.write(ctx, table, rows, keyColumn)
}

// Select implements driven.RemoteStore.
func (s *Store) Select(ctx context.Context, table, columns string, limit int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM %s LIMIT $1", quoteList(strings.Split(columns, ",")), quote(table))
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return 0, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("select %s: %w", table, err)
	}
	return n, nil
}

// Close implements driven.RemoteStore.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) write(ctx context.Context, table string, rows []domain.Record, keyColumn string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	payload, columns, err := encodeRows(rows)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, buildInsert(table, columns, keyColumn), string(payload))
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", table, err)
	}
	return int(tag.RowsAffected()), nil
}

// buildInsert returns an INSERT ... SELECT over json_populate_recordset($1).
// A non-empty keyColumn turns it into an upsert on that column.
func buildInsert(table string, columns []string, keyColumn string) string {
	cols := quoteList(columns)

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) SELECT %s FROM json_populate_recordset(NULL::%s, $1::json)",
		quote(table), cols, cols, quote(table))

	if keyColumn != "" {
		var sets []string
		for _, c := range columns {
			if c == keyColumn {
				continue
			}
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", quote(c), quote(c)))
		}
		if len(sets) == 0 {
			fmt.Fprintf(&b, " ON CONFLICT (%s) DO NOTHING", quote(keyColumn))
		} else {
			fmt.Fprintf(&b, " ON CONFLICT (%s) DO UPDATE SET %s", quote(keyColumn), strings.Join(sets, ", "))
		}
	}
	return b.String()
}

// encodeRows marshals rows to a JSON array and returns the sorted union of
// their object keys.
func encodeRows(rows []domain.Record) ([]byte, []string, error) {
	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("encode rows: %w", err)
	}

	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(payload, &objects); err != nil {
		return nil, nil, fmt.Errorf("decode rows: %w", err)
	}

	seen := make(map[string]struct{})
	for _, o := range objects {
		for k := range o {
			seen[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	return payload, columns, nil
}

func quote(name string) string {
	return pgx.Identifier{strings.TrimSpace(name)}.Sanitize()
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ", ")
}
