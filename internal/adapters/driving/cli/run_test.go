package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dself/internal/core/domain"
)

func TestRunCmd_AllSources(t *testing.T) {
	h := newHarness(t)

	out, err := execute(t, "run")

	require.NoError(t, err)
	assert.Equal(t, domain.AllSources, h.runner.ran)
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "browser")
	assert.Contains(t, out, "whatsapp")
	assert.Equal(t, 1, h.closed)
	assert.Equal(t, 1, h.flushed)
}

func TestRunCmd_NamedSourcesDeduplicated(t *testing.T) {
	h := newHarness(t)

	_, err := execute(t, "run", "gmail", "calendar", "gmail")

	require.NoError(t, err)
	assert.Equal(t, []domain.SourceType{domain.SourceGmail, domain.SourceCalendar}, h.runner.ran)
}

func TestRunCmd_UnknownSource(t *testing.T) {
	h := newHarness(t)

	_, err := execute(t, "run", "fax")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownSource)
	assert.Empty(t, h.opts, "services are not wired for invalid input")
}

func TestRunCmd_PassesOverrides(t *testing.T) {
	h := newHarness(t)

	_, err := execute(t, "--config", "/tmp/alt.toml", "--dry-run",
		"run", "whatsapp", "--max-results", "25", "--days-back", "3", "--file", "export.json")

	require.NoError(t, err)
	opts := requireOneOpts(t, h)
	assert.Equal(t, "/tmp/alt.toml", opts.ConfigPath)
	assert.True(t, opts.DryRun)
	assert.Equal(t, Overrides{MaxResults: 25, DaysBack: 3, WhatsAppFile: "export.json"}, opts.Overrides)
}

func TestRunCmd_NegativeOverride(t *testing.T) {
	newHarness(t)

	_, err := execute(t, "run", "--max-results=-1")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunCmd_ReportsDegradedAndUnreachable(t *testing.T) {
	h := newHarness(t)
	h.runner.reports[domain.SourceIMessage] = domain.RunReport{
		Source:      domain.SourceIMessage,
		State:       domain.RunDone,
		Extracted:   150,
		Submitted:   100,
		Persisted:   150,
		Destination: domain.DestinationFallback,
		Path:        "/data/imessages/failed_imessages_20240301_090000.json",
		Error:       "remote: 503",
	}
	h.runner.reports[domain.SourceGmail] = domain.RunReport{
		Source:      domain.SourceGmail,
		State:       domain.RunUnreachable,
		Destination: domain.DestinationNone,
		Error:       "source unreachable: token file missing",
	}

	out, err := execute(t, "run", "imessage", "gmail")

	require.NoError(t, err)
	assert.Contains(t, out, "degraded")
	assert.Contains(t, out, "unreachable")
	assert.Contains(t, out, "wrote /data/imessages/failed_imessages_20240301_090000.json")
	assert.Contains(t, out, "token file missing")
}

func TestRunCmd_RunError(t *testing.T) {
	h := newHarness(t)
	delete(h.runner.reports, domain.SourceBrowser)

	_, err := execute(t, "run", "browser")

	assert.ErrorIs(t, err, domain.ErrUnknownSource)
	assert.Equal(t, 1, h.closed)
}

func TestRunCmd_WatchRequiresWhatsApp(t *testing.T) {
	newHarness(t)

	_, err := execute(t, "run", "gmail", "--watch")

	assert.Error(t, err)
}

func TestRunCmd_WatchRejectsFile(t *testing.T) {
	h := newHarness(t)
	h.svc.Watcher = &fakeWatcher{paths: []string{"/exports/a.json"}}

	_, err := execute(t, "run", "whatsapp", "--watch", "--file", "/exports/fixed.json")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, h.runner.ran)
}

func TestRunCmd_WatchWithoutWatcher(t *testing.T) {
	newHarness(t)

	_, err := execute(t, "run", "whatsapp", "--watch")

	assert.ErrorIs(t, err, domain.ErrUnknownSource)
}

func TestRunCmd_WatchRerunsOnExport(t *testing.T) {
	h := newHarness(t)
	h.svc.Watcher = &fakeWatcher{paths: []string{"/exports/a.json", "/exports/b.json"}}

	out, err := execute(t, "run", "whatsapp", "--watch")

	require.NoError(t, err)
	assert.Equal(t, []domain.SourceType{
		domain.SourceWhatsApp, domain.SourceWhatsApp, domain.SourceWhatsApp,
	}, h.runner.ran)
	assert.Contains(t, out, "Watching")
	assert.Equal(t, 3, h.flushed)
}

func TestRunCmd_BootstrapError(t *testing.T) {
	prev := bootstrap
	t.Cleanup(func() { bootstrap = prev })
	SetBootstrap(nil)

	_, err := execute(t, "run")

	assert.EqualError(t, err, "services not configured")
}

func TestRunCmd_FlushErrorIsReported(t *testing.T) {
	h := newHarness(t)
	h.svc.Flush = func() error { return errors.New("disk full") }

	out, err := execute(t, "run", "browser")

	require.NoError(t, err)
	assert.Contains(t, out, "write metrics: disk full")
}

func TestParseSources(t *testing.T) {
	got, err := parseSources([]string{"whatsapp", "browser", "whatsapp"})
	require.NoError(t, err)
	assert.Equal(t, []domain.SourceType{domain.SourceWhatsApp, domain.SourceBrowser}, got)

	got, err = parseSources(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
