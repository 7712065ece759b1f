package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"calendar-mirror/core/reconcile"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// Scopes requested for the mirror calendar.
var Scopes = []string{calendar.CalendarEventsScope}

// TokenPath returns where the user token is cached.
func TokenPath(cfg Config) string {
	if cfg.TokenFile != "" {
		return cfg.TokenFile
	}
	return filepath.Join(xdg.DataHome, "calendar-mirror", "google-token.json")
}

// OAuthConfig reads the OAuth client secrets file.
func OAuthConfig(cfg Config) (*oauth2.Config, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading Google credentials %s: %w", reconcile.ErrConfiguration, cfg.CredentialsFile, err)
	}
	conf, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing Google credentials: %w", reconcile.ErrConfiguration, err)
	}
	conf.RedirectURL = fmt.Sprintf("http://localhost:%d/oauth/callback", callbackPort(cfg))
	return conf, nil
}

// SaveToken writes the token with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

// LoadToken reads a token saved by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}

// HTTPClient returns an authorized client, from a service account when one is
// configured and from the cached user token otherwise.
func HTTPClient(ctx context.Context, cfg Config) (*http.Client, error) {
	if cfg.ServiceAccountFile != "" {
		data, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("%w: reading service account %s: %w", reconcile.ErrConfiguration, cfg.ServiceAccountFile, err)
		}
		conf, err := google.JWTConfigFromJSON(data, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing service account: %w", reconcile.ErrConfiguration, err)
		}
		conf.Subject = cfg.Impersonate
		return conf.Client(ctx), nil
	}

	conf, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	path := TokenPath(cfg)
	token, err := LoadToken(path)
	if err != nil {
		return nil, fmt.Errorf("%w: no Google token at %s, run `calendar-mirror auth google`: %w", reconcile.ErrAuthentication, path, err)
	}

	src := &savingTokenSource{
		base: conf.TokenSource(ctx, token),
		path: path,
		last: token.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, src)), nil
}

// savingTokenSource persists refreshed tokens so the next run reuses them.
type savingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		if err := SaveToken(s.path, token); err != nil {
			return nil, err
		}
		s.last = token.AccessToken
	}
	return token, nil
}

// isAuthError reports token refresh failures and rejected credentials.
func isAuthError(err error) bool {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return true
	}
	return hasStatus(err, http.StatusUnauthorized)
}

func callbackPort(cfg Config) int {
	if cfg.CallbackPort > 0 {
		return cfg.CallbackPort
	}
	return 8085
}
