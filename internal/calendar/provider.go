// ABOUTME: Single owner of the Google OAuth credentials used by calendar tools.
// ABOUTME: Loads client secret and cached token, refreshing and persisting on use.

package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scope is the OAuth scope requested for calendar access.
const Scope = "https://www.googleapis.com/auth/calendar"

var (
	// ErrNoClientSecret means the OAuth client secret JSON is missing.
	ErrNoClientSecret = errors.New("calendar client secret not found")
	// ErrNotAuthorized means no cached token exists; the user must log in.
	ErrNotAuthorized = errors.New("calendar token not found")
)

// CredentialProvider is the one place credentials are loaded, refreshed, and
// persisted. Tool handlers and the login command both go through it, so the
// on-disk token never has two writers with different formats.
type CredentialProvider struct {
	credentialsPath string
	tokenPath       string
	logger          *slog.Logger
}

// NewCredentialProvider returns a provider reading the OAuth client secret
// and cached token from the given paths.
func NewCredentialProvider(credentialsPath, tokenPath string, logger *slog.Logger) *CredentialProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialProvider{
		credentialsPath: credentialsPath,
		tokenPath:       tokenPath,
		logger:          logger.With("component", "calendar"),
	}
}

// OAuthConfig loads the client secret JSON and returns the oauth2 config
// carrying the calendar scope.
func (p *CredentialProvider) OAuthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(p.credentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoClientSecret, p.credentialsPath)
		}
		return nil, fmt.Errorf("reading client secret: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid client secret file: %w", err)
	}
	return cfg, nil
}

// Token loads the cached OAuth token from disk.
func (p *CredentialProvider) Token() (*oauth2.Token, error) {
	data, err := os.ReadFile(p.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, p.tokenPath)
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file: %w", err)
	}
	return &tok, nil
}

// SaveToken persists a token with mode 0600, creating the parent directory.
func (p *CredentialProvider) SaveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(p.tokenPath), 0755); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(p.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Authorized reports whether a cached token with a refresh token exists.
func (p *CredentialProvider) Authorized() bool {
	tok, err := p.Token()
	return err == nil && tok.RefreshToken != ""
}

// HTTPClient returns an authenticated *http.Client. Its token source
// refreshes expired access tokens automatically and writes the refreshed
// token back to disk.
func (p *CredentialProvider) HTTPClient(ctx context.Context) (*http.Client, error) {
	cfg, err := p.OAuthConfig()
	if err != nil {
		return nil, err
	}
	tok, err := p.Token()
	if err != nil {
		return nil, err
	}
	src := &persistingTokenSource{
		provider: p,
		source:   cfg.TokenSource(ctx, tok),
		last:     tok.AccessToken,
	}
	return oauth2.NewClient(ctx, src), nil
}

// persistingTokenSource saves the token back to disk whenever the underlying
// source rotates the access token.
type persistingTokenSource struct {
	provider *CredentialProvider
	source   oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.source.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.provider.SaveToken(tok); err != nil {
			s.provider.logger.Warn("failed to persist refreshed token", "error", err)
		} else {
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}
