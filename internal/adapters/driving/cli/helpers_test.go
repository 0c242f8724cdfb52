package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dself/internal/core/domain"
)

type fakeRunner struct {
	mu      sync.Mutex
	ran     []domain.SourceType
	reports map[domain.SourceType]domain.RunReport
	history []domain.RunReport

	historySource domain.SourceType
	historyLimit  int
}

func newFakeRunner() *fakeRunner {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	reports := make(map[domain.SourceType]domain.RunReport)
	for _, s := range domain.AllSources {
		reports[s] = domain.RunReport{
			ID:          "run-" + string(s),
			Source:      s,
			State:       domain.RunDone,
			Extracted:   3,
			Submitted:   3,
			Persisted:   3,
			Destination: domain.DestinationRemote,
			StartedAt:   start,
			EndedAt:     start.Add(1500 * time.Millisecond),
		}
	}
	return &fakeRunner{reports: reports}
}

func (f *fakeRunner) Sources() []domain.SourceType {
	return domain.AllSources
}

func (f *fakeRunner) Run(_ context.Context, source domain.SourceType) (domain.RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[source]
	if !ok {
		return domain.RunReport{}, domain.ErrUnknownSource
	}
	f.ran = append(f.ran, source)
	return r, nil
}

func (f *fakeRunner) RunAll(ctx context.Context) []domain.RunReport {
	out := make([]domain.RunReport, 0, len(domain.AllSources))
	for _, s := range domain.AllSources {
		r, _ := f.Run(ctx, s)
		out = append(out, r)
	}
	return out
}

func (f *fakeRunner) History(_ context.Context, source domain.SourceType, limit int) ([]domain.RunReport, error) {
	f.historySource = source
	f.historyLimit = limit
	return f.history, nil
}

type fakeScheduler struct {
	tasks   []domain.ScheduledTask
	started bool
	stopped bool
}

func (f *fakeScheduler) Start(_ context.Context) error {
	f.started = true
	return context.Canceled
}

func (f *fakeScheduler) Stop() error {
	f.stopped = true
	return nil
}

func (f *fakeScheduler) Tasks(_ context.Context) ([]domain.ScheduledTask, error) {
	return f.tasks, nil
}

type fakeMigrator struct {
	calls int
	err   error
}

func (f *fakeMigrator) Migrate(_ context.Context) error {
	f.calls++
	return f.err
}

type fakeWatcher struct {
	paths []string
}

func (f *fakeWatcher) Watch(_ context.Context, onExport func(path string)) error {
	for _, p := range f.paths {
		onExport(p)
	}
	return nil
}

type harness struct {
	runner    *fakeRunner
	scheduler *fakeScheduler
	svc       *Services
	opts      []Options
	closed    int
	flushed   int
}

// newHarness installs fake services for the duration of the test.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		runner:    newFakeRunner(),
		scheduler: &fakeScheduler{},
	}
	specs := []domain.SourceSpec{
		{Type: domain.SourceBrowser, Table: "browser_history", FilePrefix: "chrome_history", DataDir: "/data/browser_history", Mode: domain.PersistInsert},
		{Type: domain.SourceIMessage, Table: "imessages", FilePrefix: "imessages", DataDir: "/data/imessages", Mode: domain.PersistInsert, RemoteLimit: 100},
		{Type: domain.SourceWhatsApp, Table: "whatsapp_messages", FilePrefix: "whatsapp_messages", DataDir: "/data/whatsapp_messages", Mode: domain.PersistUpsert},
	}
	settings := domain.DefaultSettings()
	settings.Remote.URL = "https://example.supabase.co"
	settings.Remote.Key = "anon-key-1234567890"
	h.svc = &Services{
		Settings:   settings,
		RemoteKind: "postgrest",
		Runner:     h.runner,
		Specs:      specs,
		Scheduler:  h.scheduler,
		Flush: func() error {
			h.flushed++
			return nil
		},
		Close: func() error {
			h.closed++
			return nil
		},
	}

	prev := bootstrap
	SetBootstrap(func(_ context.Context, opts Options) (*Services, error) {
		h.opts = append(h.opts, opts)
		return h.svc, nil
	})
	t.Cleanup(func() { bootstrap = prev })
	return h
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configPath, verbose, dryRun = "", false, false
	runMaxResults, runDaysBack, runFile, runWatch = 0, 0, "", false
	statusLimit = 10

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func requireOneOpts(t *testing.T, h *harness) Options {
	t.Helper()
	require.Len(t, h.opts, 1)
	return h.opts[0]
}
