package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/dself/internal/adapters/driven/auth"
	"github.com/custodia-labs/dself/internal/adapters/driven/config/file"
	"github.com/custodia-labs/dself/internal/adapters/driven/storage/localfile"
	"github.com/custodia-labs/dself/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/dself/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/dself/internal/adapters/driven/storage/remote"
	"github.com/custodia-labs/dself/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/dself/internal/adapters/driving/cli"
	"github.com/custodia-labs/dself/internal/connectors/chrome"
	"github.com/custodia-labs/dself/internal/connectors/google/calendar"
	"github.com/custodia-labs/dself/internal/connectors/google/gmail"
	"github.com/custodia-labs/dself/internal/connectors/imessage"
	"github.com/custodia-labs/dself/internal/connectors/whatsapp"
	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
	"github.com/custodia-labs/dself/internal/core/services"
	"github.com/custodia-labs/dself/internal/logger"
	"github.com/custodia-labs/dself/internal/metrics"

	calendarapi "google.golang.org/api/calendar/v3"
	gmailapi "google.golang.org/api/gmail/v1"
)

// bootstrap wires settings, stores and source pipelines for one invocation.
func bootstrap(ctx context.Context, opts cli.Options) (svc *cli.Services, err error) {
	settings, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		closers = nil
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	store, kind, err := openRemote(ctx, settings.Remote, opts.DryRun)
	if err != nil {
		return nil, err
	}
	if store != nil {
		closers = append(closers, store.Close)
	}

	state, err := sqlite.NewStore(settings.StateDir)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	closers = append(closers, state.Close)

	collector := metrics.New()
	runner := services.NewRunner(state.RunStore(), collector)
	gateway := services.NewGateway(store, localfile.NewWriter(), settings.Remote.Validate)

	exports, err := whatsapp.New(settings.WhatsApp)
	if err != nil {
		return nil, err
	}

	runner.Register(services.NewPipeline[chrome.Visit, domain.BrowserHistoryEntry](
		chrome.New(settings.Browser), gateway))
	runner.Register(services.NewPipeline[*calendarapi.Event, domain.CalendarEvent](
		calendar.New(settings.Calendar, auth.NewFileTokenProvider(settings.Calendar.TokenPath)), gateway))
	runner.Register(services.NewPipeline[*gmailapi.Message, domain.EmailMessage](
		gmail.New(settings.Gmail, auth.NewFileTokenProvider(settings.Gmail.TokenPath)), gateway))
	runner.Register(services.NewPipeline[imessage.Row, domain.IMessage](
		imessage.New(settings.IMessage), gateway))
	runner.Register(services.NewPipeline[whatsapp.ExportMessage, domain.WhatsAppMessage](
		exports, gateway))

	svc = &cli.Services{
		Settings:   settings,
		RemoteKind: kind,
		Runner:     runner,
		Specs:      runner.Specs(),
		Scheduler:  services.NewScheduler(settings.Scheduler, state.SchedulerStore(), runner),
		Watcher:    exports,
		Close:      closeAll,
	}
	if pg, ok := store.(*postgres.Store); ok {
		svc.Migrator = pg
	}
	if path := settings.MetricsTextfile; path != "" {
		svc.Flush = func() error { return collector.WriteTextfile(path) }
	}
	return svc, nil
}

func loadSettings(opts cli.Options) (domain.Settings, error) {
	var (
		cfg *file.ConfigStore
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = file.NewConfigStoreAt(opts.ConfigPath)
	} else {
		cfg, err = file.NewConfigStore("")
	}
	if err != nil {
		return domain.Settings{}, err
	}

	settings, err := file.LoadSettings(cfg, nil)
	if err != nil {
		return domain.Settings{}, err
	}

	o := opts.Overrides
	if o.MaxResults > 0 {
		settings.Calendar.MaxResults = o.MaxResults
		settings.Gmail.MaxResults = o.MaxResults
	}
	if o.DaysBack > 0 {
		settings.Calendar.DaysBack = o.DaysBack
	}
	if o.WhatsAppFile != "" {
		abs, err := filepath.Abs(o.WhatsAppFile)
		if err != nil {
			return domain.Settings{}, fmt.Errorf("resolve %s: %w", o.WhatsAppFile, err)
		}
		settings.WhatsApp.File = abs
	}
	return settings, nil
}

// openRemote returns the remote store and a name for it. A nil store means
// local-only persistence, which is also used when the configured URL cannot
// be turned into a store. A configured store that cannot be reached is
// replaced by one that always fails, so batches go to fallback files.
// Only a dry run or a valid store yields a non-nil store without warning.
func openRemote(ctx context.Context, cfg domain.RemoteStoreConfig, dryRun bool) (driven.RemoteStore, string, error) {
	if dryRun {
		return memory.NewRecordStore(), "memory (dry run)", nil
	}

	store, err := remote.Open(ctx, cfg)
	switch {
	case err == nil:
		backend, _ := remote.BackendFor(cfg.URL)
		return store, string(backend), nil
	case errors.Is(err, domain.ErrRemoteNotConfigured):
		logger.Debug("remote store not configured, saving batches locally")
		return nil, "none (local files only)", nil
	case errors.Is(err, domain.ErrRemoteUnavailable):
		logger.Warn("remote store unavailable, batches will be saved to fallback files: %v", err)
		backend, _ := remote.BackendFor(cfg.URL)
		return remote.Unavailable(err), string(backend) + " (unavailable)", nil
	default:
		logger.Warn("remote store not usable, saving batches locally: %v", err)
		return nil, "none (invalid remote url)", nil
	}
}
