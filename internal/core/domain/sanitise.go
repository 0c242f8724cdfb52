package domain

import "unicode/utf8"

// Storage limits for size-bounded string fields, in bytes.
const (
	// LimitShort bounds names, titles, summaries and locations.
	LimitShort = 500
	// LimitLong bounds descriptions and message text.
	LimitLong = 1000
	// LimitURL bounds URLs, keeping them below the Postgres btree index limit.
	LimitURL = 2000
)

// Ellipsis marks a truncated field.
const Ellipsis = "..."

// Truncate bounds s to limit bytes. A cut string ends with Ellipsis and the
// marker is counted within the limit. Cuts never split a UTF-8 sequence.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if limit <= len(Ellipsis) {
		return Ellipsis[:max(limit, 0)]
	}

	cut := limit - len(Ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + Ellipsis
}

// IsTruncated reports whether s carries the truncation marker.
func IsTruncated(s string) bool {
	return len(s) >= len(Ellipsis) && s[len(s)-len(Ellipsis):] == Ellipsis
}
