package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-mood-space/internal/db"
	"github.com/justestif/go-spotify-mood-space/internal/history"
	"github.com/justestif/go-spotify-mood-space/internal/mood"
	spotifyclient "github.com/justestif/go-spotify-mood-space/internal/spotify"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// defaultImportLimit caps library imports unless the request says otherwise.
const defaultImportLimit = 500

// Library is the user's Spotify library as seen by the handlers.
type Library interface {
	FetchLikedSongs(ctx context.Context, limit int) ([]tracks.Track, error)
	FetchPlaylistTracks(ctx context.Context, playlistID string, limit int) ([]tracks.Track, error)
	FetchAudioFeatures(ctx context.Context, list []tracks.Track) error
	ExportPlaylist(ctx context.Context, name, description string, public bool, trackIDs []string) (string, error)
}

// LibraryFactory opens a Library for a session token.
type LibraryFactory func(ctx context.Context, token *oauth2.Token) Library

// spotifyLibrary opens libraries through the Spotify Web API.
func spotifyLibrary(auth *spotifyauth.Authenticator, log logrus.FieldLogger) LibraryFactory {
	return func(ctx context.Context, token *oauth2.Token) Library {
		api := spotify.New(auth.Client(ctx, token), spotify.WithRetry(true))
		return spotifyclient.New(api, log)
	}
}

// userLibrary opens the logged-in user's library.
func (h *Handlers) userLibrary(r *http.Request) (Library, *Session, error) {
	if h.library == nil {
		return nil, nil, errLoginDisabled
	}
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		return nil, nil, errUnauthorized
	}
	return h.library(r.Context(), session.Token), session, nil
}

type importRequest struct {
	Source     string         `json:"source"` // liked or playlist
	PlaylistID string         `json:"playlist_id"`
	Limit      int            `json:"limit"`
	Save       bool           `json:"save"`
	Name       string         `json:"name"`
	Settings   *settingsPatch `json:"settings"`
	Seed       *uint64        `json:"seed"`
}

// Import loads liked songs or a playlist with audio features into a new
// scene (POST /api/spotify/import). With save set, the analysis is also
// recorded in history.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.Settings.validate(); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Save && h.history == nil {
		h.writeError(w, r, errHistoryDisabled)
		return
	}

	lib, session, err := h.userLibrary(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultImportLimit
	}

	var (
		list   []tracks.Track
		source string
	)
	switch req.Source {
	case "liked", "":
		source = "liked"
		list, err = lib.FetchLikedSongs(r.Context(), limit)
	case "playlist":
		if strings.TrimSpace(req.PlaylistID) == "" {
			h.writeError(w, r, badRequest("playlist_id is required"))
			return
		}
		source = "playlist:" + req.PlaylistID
		list, err = lib.FetchPlaylistTracks(r.Context(), req.PlaylistID, limit)
	default:
		h.writeError(w, r, badRequest("source must be liked or playlist"))
		return
	}
	if err != nil {
		h.writeError(w, r, fmt.Errorf("importing %s: %w", source, err))
		return
	}
	if len(list) == 0 {
		h.writeError(w, r, tracks.ErrNoTracks)
		return
	}

	if err := lib.FetchAudioFeatures(r.Context(), list); err != nil {
		h.writeError(w, r, err)
		return
	}

	id, sc, err := h.createScene(list, req.Settings, req.Seed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := importResponse{sceneResponse: newSceneResponse(id, sc)}
	if req.Save {
		a, err := h.history.Save(r.Context(), history.Record{
			UserID:    session.UserID,
			Name:      req.Name,
			Source:    source,
			Threshold: resp.Stats.Threshold,
			EdgeCount: resp.Stats.Edges,
			Tracks:    list,
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		resp.Analysis = a
		h.log.WithField("analysis", a.ID).Info("Analysis saved")
	}

	h.writeJSON(w, r, http.StatusCreated, resp)
}

type importResponse struct {
	sceneResponse
	Analysis *db.Analysis `json:"analysis,omitempty"`
}

type exportRequest struct {
	playlistRequest
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type exportResponse struct {
	PlaylistID string             `json:"playlist_id"`
	Mood       string             `json:"mood"`
	Tracks     []mood.ScoredTrack `json:"tracks"`
}

// Export generates a mood playlist from a scene and saves it to the user's
// Spotify account (POST /api/scenes/{sceneID}/export).
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	lib, _, err := h.userLibrary(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	_, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	pl, err := h.playlist(sc, req.playlistRequest)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(pl.Tracks) == 0 {
		h.writeError(w, r, badRequest("no tracks match mood %q", pl.Mood))
		return
	}

	ids := make([]string, 0, len(pl.Tracks))
	for _, t := range mood.Tracks(pl.Tracks) {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		h.writeError(w, r, badRequest("matching tracks have no Spotify IDs"))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Mood: " + pl.Mood
	}
	id, err := lib.ExportPlaylist(r.Context(), name, req.Description, req.Public, ids)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, exportResponse{PlaylistID: id, Mood: pl.Mood, Tracks: pl.Tracks})
}
