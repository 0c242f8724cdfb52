package chrome

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// chromeMicros converts a UTC time to Chrome's 1601-based microseconds.
func chromeMicros(t time.Time) int64 {
	return t.UnixMicro() + webkitEpochOffset*1_000_000
}

func createHistory(t *testing.T, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "History")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE urls (
		id INTEGER PRIMARY KEY,
		url LONGVARCHAR,
		title LONGVARCHAR,
		visit_count INTEGER DEFAULT 0 NOT NULL,
		last_visit_time INTEGER NOT NULL
	)`)
	require.NoError(t, err)
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO urls (url, title, visit_count, last_visit_time) VALUES (?, ?, ?, ?)`, r...)
		require.NoError(t, err)
	}
	return path
}

func TestExtract_OrdersByRecencyAndSkipsNeverVisited(t *testing.T) {
	t1 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	path := createHistory(t, [][]any{
		{"https://never.example", "Never", 0, 0},
		{"https://older.example", "Older", 3, chromeMicros(t1)},
		{"https://newer.example", nil, 1, chromeMicros(t2)},
	})
	a := New(domain.BrowserSettings{HistoryPath: path, DataDir: t.TempDir()})

	visits, err := a.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, visits, 2)

	assert.Equal(t, "https://newer.example", visits[0].URL)
	assert.Equal(t, "", visits[0].Title)
	assert.Equal(t, "https://older.example", visits[1].URL)
	assert.Equal(t, int64(3), visits[1].VisitCount)
}

func TestExtract_MissingDatabase(t *testing.T) {
	a := New(domain.BrowserSettings{HistoryPath: filepath.Join(t.TempDir(), "History")})

	_, err := a.Extract(context.Background())

	assert.ErrorIs(t, err, domain.ErrSourceUnreachable)
}

func TestExtract_NotAHistoryDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "History")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE other (x INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = New(domain.BrowserSettings{HistoryPath: path}).Extract(context.Background())

	assert.ErrorIs(t, err, domain.ErrSourceUnreachable)
}

func TestNormalise(t *testing.T) {
	visited := time.Date(2024, 5, 2, 9, 30, 15, 250000000, time.UTC)
	savedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := New(domain.BrowserSettings{HistoryPath: "unused"})

	entry := a.Normalise(Visit{
		URL:           "https://example.com",
		Title:         "Example",
		VisitCount:    4,
		LastVisitTime: chromeMicros(visited),
	}, savedAt)

	require.NotNil(t, entry.Timestamp)
	assert.Equal(t, "2024-05-02T09:30:15.250000Z", *entry.Timestamp)
	assert.Equal(t, "Google Chrome", entry.Browser)
	assert.Equal(t, "2024-06-01T12:00:00.000000Z", entry.ExtractionDate)
	assert.Equal(t, int64(4), entry.VisitCount)
}

func TestVisitTime(t *testing.T) {
	assert.Nil(t, VisitTime(0))

	epoch := VisitTime(webkitEpochOffset * 1_000_000)
	require.NotNil(t, epoch)
	assert.Equal(t, "1970-01-01T00:00:00.000000Z", *epoch)
}

func TestDefaultHistoryPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/Users/me", "Library", "Application Support", "Google", "Chrome", "Default", "History"),
		DefaultHistoryPath("darwin", "/Users/me", ""))
	assert.Equal(t,
		filepath.Join("/home/me", ".config", "google-chrome", "Default", "History"),
		DefaultHistoryPath("linux", "/home/me", ""))
	assert.Equal(t,
		filepath.Join("/appdata", "Google", "Chrome", "User Data", "Default", "History"),
		DefaultHistoryPath("windows", "/home/me", "/appdata"))
	assert.Equal(t,
		filepath.Join("/home/me", "AppData", "Local", "Google", "Chrome", "User Data", "Default", "History"),
		DefaultHistoryPath("windows", "/home/me", ""))
}

func TestSpec(t *testing.T) {
	spec := New(domain.BrowserSettings{HistoryPath: "h", DataDir: "/data"}).Spec()

	assert.Equal(t, domain.SourceBrowser, spec.Type)
	assert.Equal(t, "browser_history", spec.Table)
	assert.Equal(t, "chrome_history", spec.FilePrefix)
	assert.Equal(t, "/data", spec.DataDir)
	assert.Equal(t, domain.PersistInsert, spec.Mode)
	assert.Zero(t, spec.RemoteLimit)
}
