package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dself/internal/adapters/driven/storage/localfile"
	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// fakeAdapter is a SourceAdapter over string payloads that yields
// WhatsApp-shaped records keyed by the payload.
type fakeAdapter struct {
	spec       domain.SourceSpec
	items      []string
	extractErr error
	calls      int
}

func (a *fakeAdapter) Spec() domain.SourceSpec { return a.spec }

func (a *fakeAdapter) Extract(context.Context) ([]string, error) {
	a.calls++
	if a.extractErr != nil {
		return nil, a.extractErr
	}
	return a.items, nil
}

func (a *fakeAdapter) Normalise(raw string, savedAt time.Time) domain.WhatsAppMessage {
	return domain.WhatsAppMessage{
		ID:      raw,
		Text:    "text " + raw,
		SavedAt: domain.FormatTimestamp(savedAt),
	}
}

// dedupingAdapter adds a BatchFilter that keeps the first record per key.
type dedupingAdapter struct {
	fakeAdapter
}

func (a *dedupingAdapter) Filter(records []domain.WhatsAppMessage) []domain.WhatsAppMessage {
	seen := make(map[string]bool)
	out := records[:0]
	for _, r := range records {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

func testSpec(t *testing.T, mode domain.PersistMode) domain.SourceSpec {
	t.Helper()
	return domain.SourceSpec{
		Type:       domain.SourceWhatsApp,
		Table:      "whatsapp_messages",
		FilePrefix: "whatsapp_messages",
		DataDir:    filepath.Join(t.TempDir(), "whatsapp", "data"),
		Mode:       mode,
	}
}

func items(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("msg-%03d", i)
	}
	return out
}

// dataFiles lists the file names written to dir, sorted.
func dataFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func newLocalGateway() *Gateway {
	return NewGateway(nil, localfile.NewWriter(), true)
}

type testPipeline = Pipeline[string, domain.WhatsAppMessage]

func newTestPipeline(a driven.SourceAdapter[string, domain.WhatsAppMessage], g *Gateway) *testPipeline {
	return NewPipeline(a, g)
}
