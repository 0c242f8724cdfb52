package domain

import "fmt"

// SourceType identifies a data source.
type SourceType string

const (
	// SourceBrowser is the Chrome browser history database.
	SourceBrowser SourceType = "browser"
	// SourceCalendar is the user's Google Calendar.
	SourceCalendar SourceType = "calendar"
	// SourceGmail is the user's Gmail mailbox.
	SourceGmail SourceType = "gmail"
	// SourceIMessage is the device-local iMessage chat.db.
	SourceIMessage SourceType = "imessage"
	// SourceWhatsApp is a WhatsApp export produced by an external client.
	SourceWhatsApp SourceType = "whatsapp"
)

// AllSources lists every source in the order they are run by default.
var AllSources = []SourceType{
	SourceBrowser,
	SourceCalendar,
	SourceGmail,
	SourceIMessage,
	SourceWhatsApp,
}

// ParseSourceType converts a name to a SourceType.
func ParseSourceType(name string) (SourceType, error) {
	for _, s := range AllSources {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// PersistMode selects how a batch is written to the remote store.
type PersistMode int

const (
	// PersistInsert appends rows; the store assigns a surrogate key.
	PersistInsert PersistMode = iota

	// PersistUpsert writes rows keyed by their natural identifier,
	// overwriting any existing row with the same key.
	PersistUpsert
)

// String returns the mode name.
func (m PersistMode) String() string {
	switch m {
	case PersistInsert:
		return "insert"
	case PersistUpsert:
		return "upsert"
	default:
		return "unknown"
	}
}

// KeyColumn is the column holding a record's natural identifier.
const KeyColumn = "id"

// SourceSpec describes where a source's records are persisted.
type SourceSpec struct {
	// Type identifies the source.
	Type SourceType

	// Table is the remote store table name.
	Table string

	// FilePrefix names local JSON files (e.g. "chrome_history").
	FilePrefix string

	// DataDir is the directory local JSON files are written to.
	DataDir string

	// Mode selects insert-only or upsert-by-key.
	Mode PersistMode

	// RemoteLimit caps how many records are submitted to the remote store.
	// Zero means no cap. Local files always receive the full batch.
	RemoteLimit int
}
