package domain

import "time"

// TimestampLayout is the ISO-8601 layout used for every persisted timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Record is implemented by every canonical record shape.
type Record interface {
	// Source returns the source that produced the record.
	Source() SourceType

	// Key returns the natural identifier used for upserts.
	// Empty for append-only sources.
	Key() string
}

// Sanitisable is a Record that can produce a copy bounded to storage limits.
type Sanitisable[R any] interface {
	Record

	// Sanitised returns a copy with every size-bounded field truncated.
	Sanitised() R
}

// Records converts a typed slice to a slice of Record.
func Records[R Record](rs []R) []Record {
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}
