package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
)

// Ensure FileTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*FileTokenProvider)(nil)

// AuthorizedUser is the cached token file format written by Google's
// installed-app flow ("authorized_user" credentials).
type AuthorizedUser struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes,omitempty"`
	Expiry       string   `json:"expiry,omitempty"`
}

// expiryLayouts covers RFC 3339 and the naive ISO form without a zone.
var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// ExpiryTime parses Expiry. The zero time means unknown.
func (u AuthorizedUser) ExpiryTime() time.Time {
	if u.Expiry == "" {
		return time.Time{}
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, u.Expiry); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FileTokenProvider serves access tokens from a cached authorized-user token
// file, refreshing through the token endpoint when the access token is
// expired and writing the refreshed token back to the file.
type FileTokenProvider struct {
	path string

	mu            sync.RWMutex
	cachedToken   string
	cacheExpiry   time.Time
	refreshBuffer time.Duration
	now           func() time.Time
}

// NewFileTokenProvider creates a provider for the token file at path.
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{
		path:          path,
		refreshBuffer: 5 * time.Minute,
		now:           time.Now,
	}
}

// Path returns the token file path.
func (p *FileTokenProvider) Path() string {
	return p.path
}

// GetToken returns a valid access token, refreshing if necessary.
func (p *FileTokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.RLock()
	if p.cachedToken != "" && p.now().Before(p.cacheExpiry) {
		token := p.cachedToken
		p.mu.RUnlock()
		return token, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedToken != "" && p.now().Before(p.cacheExpiry) {
		return p.cachedToken, nil
	}

	user, err := p.load()
	if err != nil {
		return "", err
	}

	expiry := user.ExpiryTime()
	needsRefresh := user.Token == "" ||
		(!expiry.IsZero() && expiry.Sub(p.now()) < p.refreshBuffer)

	if needsRefresh {
		if user.RefreshToken == "" {
			return "", fmt.Errorf("%w: %s has no refresh token", domain.ErrAuthRequired, p.path)
		}
		tok, err := refresh(ctx, user)
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
		}
		user.Token = tok.AccessToken
		if tok.RefreshToken != "" {
			user.RefreshToken = tok.RefreshToken
		}
		expiry = tok.Expiry.UTC()
		user.Expiry = ""
		if !expiry.IsZero() {
			user.Expiry = expiry.Format(time.RFC3339Nano)
		}
		if err := p.save(user); err != nil {
			return "", fmt.Errorf("save refreshed token: %w", err)
		}
	}

	p.cachedToken = user.Token
	if !expiry.IsZero() {
		p.cacheExpiry = expiry.Add(-p.refreshBuffer)
	} else {
		p.cacheExpiry = p.now().Add(1 * time.Hour)
	}

	return p.cachedToken, nil
}

// IsAuthenticated returns true if the token file holds a usable credential.
func (p *FileTokenProvider) IsAuthenticated() bool {
	user, err := p.load()
	if err != nil {
		return false
	}
	return user.Token != "" || user.RefreshToken != ""
}

func (p *FileTokenProvider) load() (*AuthorizedUser, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: token file %s not found", domain.ErrAuthRequired, p.path)
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var user AuthorizedUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrAuthRequired, p.path, err)
	}
	return &user, nil
}

func (p *FileTokenProvider) save(user *AuthorizedUser) error {
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".token-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p.path)
}

// refresh exchanges the refresh token for a new access token.
func refresh(ctx context.Context, user *AuthorizedUser) (*oauth2.Token, error) {
	endpoint := google.Endpoint
	if user.TokenURI != "" {
		endpoint.TokenURL = user.TokenURI
	}
	cfg := &oauth2.Config{
		ClientID:     user.ClientID,
		ClientSecret: user.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       user.Scopes,
	}

	// An expired token forces the source to hit the token endpoint.
	stale := &oauth2.Token{
		RefreshToken: user.RefreshToken,
		Expiry:       time.Unix(1, 0),
	}
	return cfg.TokenSource(ctx, stale).Token()
}
