package gcal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/skratchdot/open-golang/open"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Authorize runs the interactive consent flow: it serves the OAuth callback on
// localhost, opens the consent page and saves the granted token.
func Authorize(ctx context.Context, cfg Config, logger *zap.Logger, openBrowser bool) (string, error) {
	conf, err := OAuthConfig(cfg)
	if err != nil {
		return "", err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", callbackPort(cfg)))
	if err != nil {
		return "", fmt.Errorf("failed to listen for the OAuth callback: %w", err)
	}

	state := uuid.NewString()
	tokens := make(chan *oauth2.Token, 1)
	errs := make(chan error, 1)
	fail := func(err error) {
		select {
		case errs <- err:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			fail(errors.New("state mismatch in OAuth callback"))
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			fail(fmt.Errorf("no authorization code received: %s", r.URL.Query().Get("error")))
			return
		}

		token, err := conf.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, "exchange failed", http.StatusInternalServerError)
			fail(fmt.Errorf("failed to exchange code: %w", err))
			return
		}
		select {
		case tokens <- token:
		default:
		}
		_, _ = fmt.Fprintln(w, "Authorization successful, you can close this window.")
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail(err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	// Force a refresh token even when the user consented before.
	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	logger.Info("Waiting for Google consent", zap.String("url", authURL))
	if openBrowser {
		if err := open.Run(authURL); err != nil {
			logger.Warn("Could not open a browser, visit the URL manually", zap.Error(err))
		}
	}

	select {
	case token := <-tokens:
		path := TokenPath(cfg)
		if err := SaveToken(path, token); err != nil {
			return "", err
		}
		return path, nil
	case err := <-errs:
		return "", fmt.Errorf("OAuth flow failed: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
