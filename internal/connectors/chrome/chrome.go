// Package chrome reads visited URLs from Google Chrome's History database.
package chrome

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/custodia-labs/dself/internal/connectors/snapshot"
	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
	"github.com/custodia-labs/dself/internal/logger"
)

// Persistence targets.
const (
	Table      = "browser_history"
	FilePrefix = "chrome_history"
)

// webkitEpochOffset is the number of seconds between 1601-01-01 and the
// Unix epoch. Chrome stores visit times as microseconds since 1601.
const webkitEpochOffset = 11644473600

const historyQuery = `
SELECT url, title, visit_count, last_visit_time
FROM urls
WHERE last_visit_time > 0
ORDER BY last_visit_time DESC`

// Ensure Adapter implements the source port.
var _ driven.SourceAdapter[Visit, domain.BrowserHistoryEntry] = (*Adapter)(nil)

// Visit is one row of the urls table.
type Visit struct {
	URL        string
	Title      string
	VisitCount int64

	// LastVisitTime is microseconds since 1601-01-01 UTC; zero means never.
	LastVisitTime int64
}

// Adapter is the browser history source.
type Adapter struct {
	historyPath string
	dataDir     string
}

// New creates the adapter. An empty HistoryPath selects the default profile
// location for the running OS.
func New(cfg domain.BrowserSettings) *Adapter {
	path := cfg.HistoryPath
	if path == "" {
		home, _ := os.UserHomeDir()
		path = DefaultHistoryPath(runtime.GOOS, home, os.Getenv("LOCALAPPDATA"))
	}
	return &Adapter{historyPath: path, dataDir: cfg.DataDir}
}

// DefaultHistoryPath returns Chrome's default-profile History file for goos.
func DefaultHistoryPath(goos, home, localAppData string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "Default", "History")
	case "windows":
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(localAppData, "Google", "Chrome", "User Data", "Default", "History")
	default:
		return filepath.Join(home, ".config", "google-chrome", "Default", "History")
	}
}

// HistoryPath returns the database the adapter reads.
func (a *Adapter) HistoryPath() string {
	return a.historyPath
}

// Spec implements driven.SourceAdapter.
func (a *Adapter) Spec() domain.SourceSpec {
	return domain.SourceSpec{
		Type:       domain.SourceBrowser,
		Table:      Table,
		FilePrefix: FilePrefix,
		DataDir:    a.dataDir,
		Mode:       domain.PersistInsert,
	}
}

// Extract reads every visited URL, most recent first. The database is read
// from a private copy because Chrome keeps it locked while running.
func (a *Adapter) Extract(ctx context.Context) ([]Visit, error) {
	db, err := snapshot.Open(a.historyPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, historyQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: query history: %w", domain.ErrSourceUnreachable, err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var title *string
		if err := rows.Scan(&v.URL, &title, &v.VisitCount, &v.LastVisitTime); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if title != nil {
			v.Title = *title
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history rows: %w", err)
	}

	logger.Debug("chrome: read %d visits from %s", len(visits), a.historyPath)
	return visits, nil
}

// Normalise implements driven.SourceAdapter.
func (a *Adapter) Normalise(v Visit, savedAt time.Time) domain.BrowserHistoryEntry {
	return domain.BrowserHistoryEntry{
		URL:            v.URL,
		Title:          v.Title,
		VisitCount:     v.VisitCount,
		Timestamp:      VisitTime(v.LastVisitTime),
		Browser:        domain.BrowserName,
		ExtractionDate: domain.FormatTimestamp(savedAt),
	}
}

// VisitTime converts a Chrome timestamp to an ISO-8601 string.
// Zero yields nil.
func VisitTime(micros int64) *string {
	if micros == 0 {
		return nil
	}
	t := time.UnixMicro(micros - webkitEpochOffset*1_000_000)
	s := domain.FormatTimestamp(t)
	return &s
}
