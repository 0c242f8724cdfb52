// Package remote selects the remote record store backend for a URL.
package remote

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/dself/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/dself/internal/adapters/driven/storage/postgrest"
	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// Backend names a remote store implementation.
type Backend string

// Supported backends.
const (
	BackendREST     Backend = "rest"
	BackendPostgres Backend = "postgres"
)

// BackendFor picks the backend from the URL scheme.
func BackendFor(rawURL string) (Backend, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: remote url: %w", domain.ErrInvalidInput, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return BackendREST, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("%w: unsupported remote url scheme %q", domain.ErrInvalidInput, u.Scheme)
	}
}

// Open returns the remote store for cfg, or ErrRemoteNotConfigured when
// URL or key is missing.
func Open(ctx context.Context, cfg domain.RemoteStoreConfig) (driven.RemoteStore, error) {
	if !cfg.Configured() {
		return nil, domain.ErrRemoteNotConfigured
	}

	backend, err := BackendFor(cfg.URL)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendPostgres:
		return postgres.Open(ctx, cfg.URL, cfg.Key)
	default:
		return postgrest.New(cfg.URL, cfg.Key), nil
	}
}
