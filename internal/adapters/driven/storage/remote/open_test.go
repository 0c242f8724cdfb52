package remote

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dself/internal/adapters/driven/storage/localfile"
	"github.com/custodia-labs/dself/internal/adapters/driven/storage/postgrest"
	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/services"
)

func TestBackendFor(t *testing.T) {
	tests := []struct {
		url  string
		want Backend
	}{
		{"https://abc.supabase.co", BackendREST},
		{"http://localhost:3000", BackendREST},
		{"postgres://user@db:5432/self", BackendPostgres},
		{"postgresql://db/self", BackendPostgres},
	}
	for _, tt := range tests {
		got, err := BackendFor(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got, tt.url)
	}

	_, err := BackendFor("ftp://x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpen_NotConfigured(t *testing.T) {
	store, err := Open(context.Background(), domain.RemoteStoreConfig{URL: "https://abc.supabase.co"})
	assert.Nil(t, store)
	assert.ErrorIs(t, err, domain.ErrRemoteNotConfigured)
}

func TestOpen_REST(t *testing.T) {
	store, err := Open(context.Background(), domain.RemoteStoreConfig{URL: "https://abc.supabase.co", Key: "k"})
	require.NoError(t, err)
	assert.IsType(t, &postgrest.Client{}, store)
	assert.NoError(t, store.Close())
}

func TestUnavailable_FallsBackToLocalFile(t *testing.T) {
	cause := fmt.Errorf("%w: connection refused", domain.ErrRemoteUnavailable)
	store := Unavailable(cause)
	gw := services.NewGateway(store, localfile.NewWriter(), true)
	spec := domain.SourceSpec{
		Type:       domain.SourceBrowser,
		Table:      "browser_history",
		FilePrefix: "chrome_history",
		DataDir:    t.TempDir(),
	}

	out := gw.Persist(context.Background(), spec, []domain.Record{domain.BrowserHistoryEntry{URL: "https://example.com"}})

	assert.Equal(t, domain.DestinationFallback, out.Destination)
	assert.ErrorIs(t, out.Err, domain.ErrRemoteUnavailable)
	assert.Equal(t, 1, out.Accepted)
	assert.Contains(t, filepath.Base(out.Path), domain.FailedPrefix+"chrome_history_")
	assert.NoError(t, store.Close())
}
