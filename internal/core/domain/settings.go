package domain

import "time"

// RemoteStoreConfig holds the remote structured store connection settings.
// Remote persistence is enabled only when both URL and Key are set.
type RemoteStoreConfig struct {
	// URL is the store endpoint: an http(s) REST endpoint or a postgres URL.
	URL string

	// Key is the access credential.
	Key string

	// Validate issues a bounded read against the target table before writing.
	Validate bool
}

// Configured reports whether remote persistence is enabled.
func (c RemoteStoreConfig) Configured() bool {
	return c.URL != "" && c.Key != ""
}

// BrowserSettings configures the browser history source.
type BrowserSettings struct {
	// HistoryPath overrides the per-OS Chrome History location.
	HistoryPath string
	DataDir     string
}

// CalendarSettings configures the calendar source.
type CalendarSettings struct {
	TokenPath  string
	CalendarID string
	MaxResults int64
	DaysBack   int
	DataDir    string
}

// GmailSettings configures the email source.
type GmailSettings struct {
	TokenPath  string
	UserID     string
	MaxResults int64
	DataDir    string
}

// IMessageSettings configures the device-local message source.
type IMessageSettings struct {
	DBPath       string
	FallbackPath string
	RemoteLimit  int
	DataDir      string
}

// WhatsAppSettings configures the exported message source.
type WhatsAppSettings struct {
	// ExportDir is searched for export files matching Pattern.
	ExportDir string
	Pattern   string

	// File selects one export explicitly, bypassing discovery.
	File    string
	DataDir string
}

// Settings is the resolved configuration for a dself invocation.
type Settings struct {
	Remote   RemoteStoreConfig
	BaseDir  string
	StateDir string

	// MetricsTextfile is written with run metrics after each CLI run when set.
	MetricsTextfile string

	Browser  BrowserSettings
	Calendar CalendarSettings
	Gmail    GmailSettings
	IMessage IMessageSettings
	WhatsApp WhatsAppSettings

	Scheduler SchedulerConfig
}

// Defaults for source settings.
const (
	DefaultCalendarID       = "primary"
	DefaultCalendarMax      = 10
	DefaultCalendarDaysBack = 30
	DefaultGmailUserID      = "me"
	DefaultGmailMax         = 10
	DefaultIMessageLimit    = 100
	DefaultWhatsAppPattern  = "whatsapp_messages_*.json"
	DefaultScheduleInterval = 24 * time.Hour
	defaultRemoteValidation = true
)

// DefaultSettings returns settings relative to the current directory.
// Data directories follow the layout <base>/<source dir>/data.
func DefaultSettings() Settings {
	return Settings{
		Remote:  RemoteStoreConfig{Validate: defaultRemoteValidation},
		BaseDir: ".",
		Browser: BrowserSettings{
			DataDir: "browser_history/data",
		},
		Calendar: CalendarSettings{
			TokenPath:  "calendar/token.json",
			CalendarID: DefaultCalendarID,
			MaxResults: DefaultCalendarMax,
			DaysBack:   DefaultCalendarDaysBack,
			DataDir:    "calendar/data",
		},
		Gmail: GmailSettings{
			TokenPath:  "gmail/token.json",
			UserID:     DefaultGmailUserID,
			MaxResults: DefaultGmailMax,
			DataDir:    "gmail/data",
		},
		IMessage: IMessageSettings{
			DBPath:       "~/Library/Messages/chat.db",
			FallbackPath: "imessage/data/chat.db",
			RemoteLimit:  DefaultIMessageLimit,
			DataDir:      "imessage/data",
		},
		WhatsApp: WhatsAppSettings{
			ExportDir: "whatsapp/data",
			Pattern:   DefaultWhatsAppPattern,
			DataDir:   "whatsapp/data",
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}
