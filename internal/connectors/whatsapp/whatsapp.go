// Package whatsapp loads messages from JSON exports produced by an external
// WhatsApp client.
package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
	"github.com/custodia-labs/dself/internal/logger"
)

// Persistence targets.
const (
	Table      = "whatsapp_messages"
	FilePrefix = "whatsapp_messages"
)

var (
	_ driven.SourceAdapter[ExportMessage, domain.WhatsAppMessage] = (*Adapter)(nil)
	_ driven.BatchFilter[domain.WhatsAppMessage]                  = (*Adapter)(nil)
)

// ExportMessage is one message as written by the exporter. Every field but
// id may be absent or null.
type ExportMessage struct {
	ID          string  `json:"id"`
	Timestamp   *string `json:"timestamp"`
	FromJID     *string `json:"from_jid"`
	FromName    *string `json:"from_name"`
	ChatJID     *string `json:"chat_jid"`
	ChatName    *string `json:"chat_name"`
	MessageType *string `json:"message_type"`
	Text        *string `json:"text"`
	IsFromMe    *bool   `json:"is_from_me"`
	IsGroup     *bool   `json:"is_group"`
}

// Adapter is the WhatsApp export source.
type Adapter struct {
	cfg     domain.WhatsAppSettings
	pattern glob.Glob
}

// New creates the adapter. The discovery pattern is a glob over file names
// in the export directory.
func New(cfg domain.WhatsAppSettings) (*Adapter, error) {
	if cfg.Pattern == "" {
		cfg.Pattern = domain.DefaultWhatsAppPattern
	}
	g, err := glob.Compile(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: whatsapp pattern %q: %w", domain.ErrInvalidInput, cfg.Pattern, err)
	}
	return &Adapter{cfg: cfg, pattern: g}, nil
}

// Spec implements driven.SourceAdapter.
func (a *Adapter) Spec() domain.SourceSpec {
	return domain.SourceSpec{
		Type:       domain.SourceWhatsApp,
		Table:      Table,
		FilePrefix: FilePrefix,
		DataDir:    a.cfg.DataDir,
		Mode:       domain.PersistUpsert,
	}
}

// Matches reports whether a file name is an export file.
func (a *Adapter) Matches(name string) bool {
	return a.pattern.Match(filepath.Base(name))
}

// Latest returns the most recently modified export file in the export
// directory.
func (a *Adapter) Latest() (string, error) {
	entries, err := os.ReadDir(a.cfg.ExportDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: export dir %s not found", domain.ErrSourceUnreachable, a.cfg.ExportDir)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrSourceUnreachable, err)
	}

	var (
		latest   string
		latestAt time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !a.Matches(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestAt) {
			latest = filepath.Join(a.cfg.ExportDir, e.Name())
			latestAt = info.ModTime()
		}
	}
	if latest == "" {
		return "", fmt.Errorf("%w: no %s files in %s", domain.ErrSourceUnreachable, a.cfg.Pattern, a.cfg.ExportDir)
	}
	return latest, nil
}

// Extract loads the explicit export file if configured, otherwise the most
// recent export. The file is validated before decoding.
func (a *Adapter) Extract(_ context.Context) ([]ExportMessage, error) {
	path := a.cfg.File
	if path == "" {
		var err error
		if path, err = a.Latest(); err != nil {
			return nil, err
		}
	}
	logger.Debug("whatsapp: reading %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnreachable, err)
	}
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var msgs []ExportMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return msgs, nil
}

// Normalise implements driven.SourceAdapter.
func (a *Adapter) Normalise(m ExportMessage, savedAt time.Time) domain.WhatsAppMessage {
	return domain.WhatsAppMessage{
		ID:          m.ID,
		Timestamp:   deref(m.Timestamp),
		FromJID:     deref(m.FromJID),
		FromName:    deref(m.FromName),
		ChatJID:     deref(m.ChatJID),
		ChatName:    deref(m.ChatName),
		MessageType: deref(m.MessageType),
		Text:        deref(m.Text),
		IsFromMe:    m.IsFromMe != nil && *m.IsFromMe,
		IsGroup:     m.IsGroup != nil && *m.IsGroup,
		SavedAt:     domain.FormatTimestamp(savedAt),
	}
}

// Filter implements driven.BatchFilter. Messages repeating an earlier id
// are dropped.
func (a *Adapter) Filter(msgs []domain.WhatsAppMessage) []domain.WhatsAppMessage {
	seen := make(map[string]struct{}, len(msgs))
	out := make([]domain.WhatsAppMessage, 0, len(msgs))
	for _, m := range msgs {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	if dropped := len(msgs) - len(out); dropped > 0 {
		logger.Info("whatsapp: filtered %d messages down to %d unique", len(msgs), len(out))
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
