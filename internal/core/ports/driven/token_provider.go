package driven

import "context"

// TokenProvider provides access tokens for delegated-access API calls.
// Implementations refresh an expired token transparently.
type TokenProvider interface {
	// GetToken returns a valid access token. A missing token is reported
	// as domain.ErrAuthRequired.
	GetToken(ctx context.Context) (string, error)

	// IsAuthenticated returns true if a token is available.
	IsAuthenticated() bool
}
