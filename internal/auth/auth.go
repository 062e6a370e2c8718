package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const (
	// DefaultRedirectURI uses explicit IPv4 loopback as required by Spotify for local development.
	// See: https://developer.spotify.com/documentation/web-api/concepts/redirect-uri
	DefaultRedirectURI = "http://127.0.0.1:8080/callback"
	callbackTimeout    = 2 * time.Minute
)

var (
	// ErrMissingCredentials is returned when the client ID or secret is empty.
	ErrMissingCredentials = errors.New("missing Spotify client ID or secret")

	// ErrAuthTimeout is returned when the OAuth callback is not received in time.
	ErrAuthTimeout = errors.New("authentication timed out waiting for callback")

	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

// Scopes are the permissions requested from Spotify: reading the library
// and writing generated playlists.
var Scopes = []string{
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// Config holds the Spotify application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// NewSpotifyAuth builds the zmb3 authenticator for cfg.
// Returns ErrMissingCredentials if the ID or secret is empty.
func NewSpotifyAuth(cfg Config) (*spotifyauth.Authenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = DefaultRedirectURI
	}
	return spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(Scopes...),
	), nil
}

// Authenticator runs the command-line OAuth flow.
type Authenticator struct {
	auth        *spotifyauth.Authenticator
	cache       *TokenCache
	redirectURI string
	log         logrus.FieldLogger
	out         io.Writer
}

// New creates an Authenticator with the default token cache.
// Returns ErrMissingCredentials if the ID or secret is empty.
func New(cfg Config, log logrus.FieldLogger) (*Authenticator, error) {
	auth, err := NewSpotifyAuth(cfg)
	if err != nil {
		return nil, err
	}

	cache, err := DefaultTokenCache()
	if err != nil {
		return nil, fmt.Errorf("creating token cache: %w", err)
	}

	if log == nil {
		log = logrus.StandardLogger()
	}
	redirect := cfg.RedirectURI
	if redirect == "" {
		redirect = DefaultRedirectURI
	}

	return &Authenticator{
		auth:        auth,
		cache:       cache,
		redirectURI: redirect,
		log:         log.WithField("component", "auth"),
		out:         os.Stdout,
	}, nil
}

// Authenticate returns an authenticated Spotify client.
// It first checks for a cached token and uses it if valid/refreshable.
// Otherwise, it runs the full OAuth flow.
func (a *Authenticator) Authenticate(ctx context.Context) (*spotify.Client, error) {
	token, err := a.cache.Load()
	if err != nil {
		return nil, fmt.Errorf("loading cached token: %w", err)
	}

	if token != nil {
		// oauth2 refreshes the token when needed
		client := spotify.New(a.auth.Client(ctx, token), spotify.WithRetry(true))

		_, err := client.CurrentUser(ctx)
		if err == nil {
			newToken, tokenErr := client.Token()
			if tokenErr == nil && newToken.AccessToken != token.AccessToken {
				if err := a.cache.Save(newToken); err != nil {
					a.log.WithError(err).Warn("Failed to cache refreshed token")
				}
			}
			return client, nil
		}

		a.log.WithError(err).Info("Cached token invalid, starting new authentication")
	}

	return a.runOAuthFlow(ctx)
}

// runOAuthFlow performs the full OAuth authorization code flow.
func (a *Authenticator) runOAuthFlow(ctx context.Context) (*spotify.Client, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	addr, path, err := callbackAddr(a.redirectURI)
	if err != nil {
		return nil, err
	}

	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		a.handleCallback(w, r, state, tokenCh, errCh)
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	fmt.Fprintln(a.out, "\nTo authenticate, open this URL in your browser:")
	fmt.Fprintln(a.out, a.auth.AuthURL(state))
	fmt.Fprintln(a.out, "\nWaiting for authentication...")

	var token *oauth2.Token
	select {
	case token = <-tokenCh:
	case err := <-errCh:
		_ = server.Shutdown(ctx)
		return nil, err
	case <-time.After(callbackTimeout):
		_ = server.Shutdown(ctx)
		return nil, ErrAuthTimeout
	case <-ctx.Done():
		_ = server.Shutdown(context.Background())
		return nil, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	// Auth succeeded even if the token cannot be cached.
	if err := a.cache.Save(token); err != nil {
		a.log.WithError(err).Warn("Failed to cache token")
	}

	return spotify.New(a.auth.Client(ctx, token), spotify.WithRetry(true)), nil
}

// callbackAddr splits a redirect URI into the listen address and path of
// the local callback server.
func callbackAddr(redirectURI string) (addr, path string, err error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", "", fmt.Errorf("parsing redirect URI: %w", err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("redirect URI %q has no host", redirectURI)
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return u.Host, path, nil
}

// handleCallback processes the OAuth callback from Spotify.
func (a *Authenticator) handleCallback(w http.ResponseWriter, r *http.Request, expectedState string, tokenCh chan<- *oauth2.Token, errCh chan<- error) {
	if r.URL.Query().Get("state") != expectedState {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		errCh <- ErrStateMismatch
		return
	}

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, "Authentication failed: "+errMsg, http.StatusBadRequest)
		errCh <- fmt.Errorf("spotify auth error: %s", errMsg)
		return
	}

	token, err := a.auth.Token(r.Context(), expectedState, r)
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		errCh <- fmt.Errorf("exchanging code for token: %w", err)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Authentication Successful</title></head>
<body>
<h1>Authentication Successful!</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`)

	tokenCh <- token
}

// GenerateState creates a random state string for OAuth.
func GenerateState() (string, error) {
	return generateState()
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Logout removes the cached token.
func (a *Authenticator) Logout() error {
	return a.cache.Delete()
}
