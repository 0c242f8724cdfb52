package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// Timestamps are fixed-width UTC text so ORDER BY on the column is
// chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// stamp is a time column. The zero time is stored as NULL and anything
// unparseable reads back as the zero time.
type stamp time.Time

var (
	_ driver.Valuer = stamp{}
	_ sql.Scanner   = (*stamp)(nil)
)

func (s stamp) Value() (driver.Value, error) {
	t := time.Time(s)
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC().Format(timeLayout), nil
}

func (s *stamp) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = stamp{}
		return nil
	case time.Time:
		*s = stamp(v.UTC())
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("timestamp column: unsupported type %T", src)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		t = time.Time{}
	}
	*s = stamp(t)
	return nil
}

// text maps the empty string to NULL.
func text(s string) sql.Null[string] {
	return sql.Null[string]{V: s, Valid: s != ""}
}

// row is satisfied by *sql.Row and *sql.Rows.
type row interface {
	Scan(dest ...any) error
}
