package domain

// BrowserName is the browser recorded on every history entry.
const BrowserName = "Google Chrome"

// BrowserHistoryEntry is one visited URL from the browser history database.
type BrowserHistoryEntry struct {
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	VisitCount     int64   `json:"visit_count"`
	Timestamp      *string `json:"timestamp"`
	Browser        string  `json:"browser"`
	ExtractionDate string  `json:"extraction_date"`
}

// Source implements Record.
func (BrowserHistoryEntry) Source() SourceType { return SourceBrowser }

// Key implements Record. History entries are append-only.
func (BrowserHistoryEntry) Key() string { return "" }

// Sanitised implements Sanitisable.
func (e BrowserHistoryEntry) Sanitised() BrowserHistoryEntry {
	e.URL = Truncate(e.URL, LimitURL)
	e.Title = Truncate(e.Title, LimitShort)
	return e
}
