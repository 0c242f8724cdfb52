// Package imessage reads messages from the device-local iMessage database.
package imessage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/dself/internal/connectors/snapshot"
	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
	"github.com/custodia-labs/dself/internal/logger"
)

// Persistence targets.
const (
	Table      = "imessages"
	FilePrefix = "imessages"
)

// appleEpochOffset is the number of seconds between the Unix epoch and
// 2001-01-01 UTC, the epoch of chat.db timestamps.
const appleEpochOffset = 978307200

// nanosecondThreshold separates second-resolution dates (older macOS) from
// nanosecond-resolution ones.
const nanosecondThreshold = 1_000_000_000_000

const messageQuery = `
SELECT handle.id, message.text, COALESCE(message.service, handle.service),
       message.account, message.is_from_me, message.date
FROM message
LEFT JOIN handle ON message.handle_id = handle.ROWID
ORDER BY message.date`

// Ensure Adapter implements the source port.
var _ driven.SourceAdapter[Row, domain.IMessage] = (*Adapter)(nil)

// Row is one message joined to its handle. Nullable columns stay nullable
// until normalisation.
type Row struct {
	Contact  sql.NullString
	Text     sql.NullString
	Service  sql.NullString
	Account  sql.NullString
	IsFromMe bool

	// Date is seconds or nanoseconds since 2001-01-01 UTC.
	Date int64
}

// Adapter is the iMessage source.
type Adapter struct {
	cfg domain.IMessageSettings
}

// New creates the adapter.
func New(cfg domain.IMessageSettings) *Adapter {
	if cfg.RemoteLimit <= 0 {
		cfg.RemoteLimit = domain.DefaultIMessageLimit
	}
	return &Adapter{cfg: cfg}
}

// Spec implements driven.SourceAdapter. Only the first RemoteLimit records
// are submitted remotely.
func (a *Adapter) Spec() domain.SourceSpec {
	return domain.SourceSpec{
		Type:        domain.SourceIMessage,
		Table:       Table,
		FilePrefix:  FilePrefix,
		DataDir:     a.cfg.DataDir,
		Mode:        domain.PersistInsert,
		RemoteLimit: a.cfg.RemoteLimit,
	}
}

// Locate returns the first existing database among the primary and
// fallback paths.
func (a *Adapter) Locate() (string, error) {
	for _, p := range []string{a.cfg.DBPath, a.cfg.FallbackPath} {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Debug("imessage: %s: %v", p, err)
		}
	}
	return "", fmt.Errorf("%w: chat.db not found at %q or %q",
		domain.ErrSourceUnreachable, a.cfg.DBPath, a.cfg.FallbackPath)
}

// Extract reads every message from a snapshot of chat.db.
func (a *Adapter) Extract(ctx context.Context) ([]Row, error) {
	path, err := a.Locate()
	if err != nil {
		return nil, err
	}
	logger.Debug("imessage: reading %s", path)

	db, err := snapshot.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, messageQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: query messages: %w", domain.ErrSourceUnreachable, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var date sql.NullInt64
		var fromMe sql.NullInt64
		if err := rows.Scan(&r.Contact, &r.Text, &r.Service, &r.Account, &fromMe, &date); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		r.IsFromMe = fromMe.Int64 != 0
		r.Date = date.Int64
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read message rows: %w", err)
	}
	return out, nil
}

// Normalise implements driven.SourceAdapter.
func (a *Adapter) Normalise(r Row, savedAt time.Time) domain.IMessage {
	msg := domain.IMessage{
		Contact:   r.Contact.String,
		Text:      r.Text.String,
		Service:   r.Service.String,
		Account:   r.Account.String,
		IsFromMe:  r.IsFromMe,
		Timestamp: AppleTime(r.Date),
		SavedAt:   domain.FormatTimestamp(savedAt),
	}
	if msg.Contact == "" {
		msg.Contact = domain.UnknownContact
	}
	if msg.Service == "" {
		msg.Service = domain.UnknownContact
	}
	return msg
}

// AppleTime converts a chat.db date to an ISO-8601 string. Zero yields "".
func AppleTime(date int64) string {
	if date == 0 {
		return ""
	}
	var t time.Time
	if date > nanosecondThreshold || date < -nanosecondThreshold {
		t = time.Unix(appleEpochOffset, date)
	} else {
		t = time.Unix(appleEpochOffset+date, 0)
	}
	return domain.FormatTimestamp(t)
}
