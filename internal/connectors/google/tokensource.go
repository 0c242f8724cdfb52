package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// providerSource serves tokens from a driven.TokenProvider. The provider
// caches and refreshes, so every Token call goes straight to it.
type providerSource struct {
	ctx      context.Context
	provider driven.TokenProvider
}

// NewTokenSource returns an oauth2.TokenSource for option.WithTokenSource.
// ctx bounds any refresh the provider performs.
func NewTokenSource(ctx context.Context, provider driven.TokenProvider) oauth2.TokenSource {
	return providerSource{ctx: ctx, provider: provider}
}

// Token implements oauth2.TokenSource.
func (s providerSource) Token() (*oauth2.Token, error) {
	access, err := s.provider.GetToken(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}
