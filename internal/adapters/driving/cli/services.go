package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driving"
)

// Overrides are per-invocation settings taken from command flags.
// Zero values leave the configured settings unchanged.
type Overrides struct {
	MaxResults   int64
	DaysBack     int
	WhatsAppFile string
}

// Options are passed to the bootstrap function.
type Options struct {
	ConfigPath string
	DryRun     bool
	Overrides  Overrides
}

// ExportWatcher reports new export files as they appear.
type ExportWatcher interface {
	Watch(ctx context.Context, onExport func(path string)) error
}

// Services are the wired application services used by the commands.
type Services struct {
	Settings domain.Settings

	// RemoteKind names the remote store backend, e.g. "postgrest".
	RemoteKind string

	Runner    driving.PipelineRunner
	Specs     []domain.SourceSpec
	Scheduler driving.Scheduler

	// Migrator is nil unless the remote store supports migrations.
	Migrator driving.Migrator

	// Watcher is nil when the export source is not registered.
	Watcher ExportWatcher

	// Flush writes run metrics, if configured.
	Flush func() error

	// Close releases stores and connections.
	Close func() error
}

// BootstrapFunc wires the services for one invocation.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var bootstrap BootstrapFunc

// SetBootstrap installs the function commands use to wire services.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

func loadServices(cmd *cobra.Command, overrides Overrides) (*Services, error) {
	if bootstrap == nil {
		return nil, errors.New("services not configured")
	}
	svc, err := bootstrap(cmd.Context(), Options{
		ConfigPath: configPath,
		DryRun:     dryRun,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, err
	}
	if svc.Close == nil {
		svc.Close = func() error { return nil }
	}
	return svc, nil
}

func closeServices(cmd *cobra.Command, svc *Services) {
	if err := svc.Close(); err != nil {
		cmd.PrintErrf("close: %v\n", err)
	}
}
