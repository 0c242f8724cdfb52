package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// styles colour terminal output. Plain writers get unstyled text.
type styles struct {
	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
}

func newStyles(w io.Writer) styles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return styles{ok: plain, warn: plain, fail: plain, muted: plain}
	}
	return styles{
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		fail:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// stateLabel renders a report's outcome.
func (s styles) stateLabel(r domain.RunReport) string {
	switch {
	case r.State == domain.RunUnreachable:
		return s.fail.Render("unreachable")
	case !r.Succeeded():
		return s.fail.Render("failed")
	case r.Destination == domain.DestinationFallback:
		return s.warn.Render("degraded")
	default:
		return s.ok.Render("ok")
	}
}

func printReports(w io.Writer, reports []domain.RunReport) {
	st := newStyles(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tSTATUS\tEXTRACTED\tSUBMITTED\tPERSISTED\tDESTINATION\tDURATION")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.Source, st.stateLabel(r), r.Extracted, r.Submitted, r.Persisted,
			r.Destination, formatDuration(r.Duration()))
	}
	_ = tw.Flush()

	for _, r := range reports {
		if r.Path != "" {
			fmt.Fprintf(w, "%s: wrote %s\n", r.Source, r.Path)
		}
		if r.Error != "" {
			fmt.Fprintf(w, "%s: %s\n", r.Source, st.muted.Render(r.Error))
		}
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// maskKey hides all but the ends of a credential.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// redactURL hides a password embedded in a connection URL.
func redactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return raw
	}
	user, _, hasPassword := strings.Cut(userinfo, ":")
	if !hasPassword {
		return raw
	}
	return scheme + "://" + user + ":****@" + host
}
