package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/justestif/go-spotify-mood-space/internal/auth"
	"github.com/justestif/go-spotify-mood-space/internal/history"
	"github.com/justestif/go-spotify-mood-space/internal/mood"
	"github.com/justestif/go-spotify-mood-space/internal/scene"
	spotifyclient "github.com/justestif/go-spotify-mood-space/internal/spotify"
)

const stateCookieName = "oauth_state"

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	auth     *spotifyauth.Authenticator
	sessions *SessionStore
	scenes   *scene.Store
	moods    *mood.Catalog
	history  *history.Service
	library  LibraryFactory
	database Pinger
	defaults scene.Settings
	log      logrus.FieldLogger
}

// userID returns the logged-in Spotify user, or "" for anonymous use.
func (h *Handlers) userID(r *http.Request) string {
	if session := h.sessions.GetFromRequest(r); session != nil {
		return session.UserID
	}
	return ""
}

type meResponse struct {
	Authenticated bool   `json:"authenticated"`
	LoginEnabled  bool   `json:"login_enabled"`
	ID            string `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
}

// Me reports the current session (GET /api/me).
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	resp := meResponse{LoginEnabled: h.auth != nil}
	if session := h.sessions.GetFromRequest(r); session != nil {
		resp.Authenticated = true
		resp.ID = session.UserID
		resp.Name = session.UserName
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		h.writeError(w, r, errLoginDisabled)
		return
	}

	// Generate state for CSRF protection
	state, err := auth.GenerateState()
	if err != nil {
		h.writeError(w, r, fmt.Errorf("generating state: %w", err))
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		h.writeError(w, r, errLoginDisabled)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		h.writeError(w, r, badRequest("missing state cookie"))
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		h.writeError(w, r, badRequest("%v", auth.ErrStateMismatch))
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		h.writeError(w, r, badRequest("spotify auth error: %s", errMsg))
		return
	}

	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("exchanging code for token: %w", err))
		return
	}

	client := spotifyclient.New(spotify.New(h.auth.Client(r.Context(), token)), h.log)
	userID, displayName, err := client.CurrentUser(r.Context())
	if err != nil {
		h.writeError(w, r, fmt.Errorf("getting user info: %w", err))
		return
	}

	session, err := h.sessions.Create(token, userID, displayName)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("creating session: %w", err))
		return
	}

	if h.history != nil {
		if err := h.history.RememberUser(r.Context(), userID, displayName); err != nil {
			h.log.WithError(err).Warn("Failed to save user")
		}
	}

	h.sessions.SetCookie(w, session)
	h.log.WithField("user", userID).Info("User logged in")

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(session.ID)
	}

	h.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status   string `json:"status"`
	Scenes   int    `json:"scenes"`
	History  bool   `json:"history"`
	Login    bool   `json:"login"`
	Database string `json:"database,omitempty"`
}

// healthPingTimeout bounds the database check.
const healthPingTimeout = 2 * time.Second

// Health reports liveness (GET /healthz). An unreachable database answers
// 503 with status "degraded".
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	resp := healthResponse{
		Status:  "ok",
		Scenes:  h.scenes.Len(),
		History: h.history != nil,
		Login:   h.auth != nil,
	}

	if h.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		resp.Database = "ok"
		if err := h.database.Ping(ctx); err != nil {
			h.log.WithError(err).Warn("Database ping failed")
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	h.writeJSON(w, r, status, resp)
}
