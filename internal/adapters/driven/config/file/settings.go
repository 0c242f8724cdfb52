package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// Environment variables consulted for the remote store.
const (
	EnvRemoteURL     = "SUPABASE_URL"
	EnvRemoteAnonKey = "SUPABASE_ANON_KEY"
	EnvRemoteKey     = "SUPABASE_KEY"
)

// LoadSettings builds settings from defaults, then the config store, then the
// environment. Relative paths are resolved against paths.base_dir and a
// leading "~/" is expanded to the user's home directory.
//
// A nil getenv means os.Getenv.
func LoadSettings(store driven.ConfigStore, getenv func(string) string) (domain.Settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	s := domain.DefaultSettings()

	if store != nil {
		if err := applyStore(&s, store); err != nil {
			return domain.Settings{}, err
		}
	}

	if v := getenv(EnvRemoteURL); v != "" {
		s.Remote.URL = v
	}
	switch {
	case getenv(EnvRemoteAnonKey) != "":
		s.Remote.Key = getenv(EnvRemoteAnonKey)
	case getenv(EnvRemoteKey) != "":
		s.Remote.Key = getenv(EnvRemoteKey)
	}

	home, _ := os.UserHomeDir()
	s.BaseDir = expandHome(s.BaseDir, home)
	resolve := func(p string) string {
		if p == "" {
			return ""
		}
		p = expandHome(p, home)
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(s.BaseDir, p)
	}

	s.Browser.HistoryPath = resolve(s.Browser.HistoryPath)
	s.Browser.DataDir = resolve(s.Browser.DataDir)
	s.Calendar.TokenPath = resolve(s.Calendar.TokenPath)
	s.Calendar.DataDir = resolve(s.Calendar.DataDir)
	s.Gmail.TokenPath = resolve(s.Gmail.TokenPath)
	s.Gmail.DataDir = resolve(s.Gmail.DataDir)
	s.IMessage.DBPath = resolve(s.IMessage.DBPath)
	s.IMessage.FallbackPath = resolve(s.IMessage.FallbackPath)
	s.IMessage.DataDir = resolve(s.IMessage.DataDir)
	s.WhatsApp.ExportDir = resolve(s.WhatsApp.ExportDir)
	s.WhatsApp.File = resolve(s.WhatsApp.File)
	s.WhatsApp.DataDir = resolve(s.WhatsApp.DataDir)
	s.MetricsTextfile = resolve(s.MetricsTextfile)
	s.StateDir = expandHome(s.StateDir, home)

	return s, nil
}

func applyStore(s *domain.Settings, store driven.ConfigStore) error {
	setString(store, "remote.url", &s.Remote.URL)
	setString(store, "remote.key", &s.Remote.Key)
	setBool(store, "remote.validate", &s.Remote.Validate)
	setString(store, "paths.base_dir", &s.BaseDir)
	setString(store, "state.dir", &s.StateDir)
	setString(store, "metrics.textfile", &s.MetricsTextfile)

	setString(store, "browser.history_path", &s.Browser.HistoryPath)

	setString(store, "calendar.token_path", &s.Calendar.TokenPath)
	setString(store, "calendar.calendar_id", &s.Calendar.CalendarID)
	if err := setPositive(store, "calendar.max_results", func(n int) { s.Calendar.MaxResults = int64(n) }); err != nil {
		return err
	}
	if err := setPositive(store, "calendar.days_back", func(n int) { s.Calendar.DaysBack = n }); err != nil {
		return err
	}

	setString(store, "gmail.token_path", &s.Gmail.TokenPath)
	setString(store, "gmail.user_id", &s.Gmail.UserID)
	if err := setPositive(store, "gmail.max_results", func(n int) { s.Gmail.MaxResults = int64(n) }); err != nil {
		return err
	}

	setString(store, "imessage.db_path", &s.IMessage.DBPath)
	setString(store, "imessage.fallback_path", &s.IMessage.FallbackPath)
	if err := setPositive(store, "imessage.remote_limit", func(n int) { s.IMessage.RemoteLimit = n }); err != nil {
		return err
	}

	setString(store, "whatsapp.export_dir", &s.WhatsApp.ExportDir)
	setString(store, "whatsapp.pattern", &s.WhatsApp.Pattern)

	setBool(store, "scheduler.enabled", &s.Scheduler.Enabled)
	for _, src := range domain.AllSources {
		key := "scheduler." + string(src) + "_interval"
		raw := store.GetString(key)
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %s = %q is not a positive duration", domain.ErrInvalidInput, key, raw)
		}
		task := s.Scheduler.ForSource(src)
		task.Interval = d
		s.Scheduler.Tasks[src] = task
	}
	for _, src := range domain.AllSources {
		key := "scheduler." + string(src) + "_enabled"
		if _, ok := store.Get(key); !ok {
			continue
		}
		task := s.Scheduler.ForSource(src)
		task.Enabled = store.GetBool(key)
		s.Scheduler.Tasks[src] = task
	}
	return nil
}

func setString(store driven.ConfigStore, key string, dst *string) {
	if v := store.GetString(key); v != "" {
		*dst = v
	}
}

func setBool(store driven.ConfigStore, key string, dst *bool) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetBool(key)
	}
}

func setPositive(store driven.ConfigStore, key string, set func(int)) error {
	if _, ok := store.Get(key); !ok {
		return nil
	}
	n := store.GetInt(key)
	if n <= 0 {
		return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
	}
	set(n)
	return nil
}

func expandHome(p, home string) string {
	if home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}
