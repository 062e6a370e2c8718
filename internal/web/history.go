package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-spotify-mood-space/internal/db"
	"github.com/justestif/go-spotify-mood-space/internal/history"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// requireHistory rejects requests when no database is configured.
func (h *Handlers) requireHistory(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.history == nil {
			h.writeError(w, r, errHistoryDisabled)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type saveRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// SaveScene records a scene as an analysis (POST /api/scenes/{sceneID}/save).
func (h *Handlers) SaveScene(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	_, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	source := req.Source
	if source == "" {
		source = "upload"
	}
	stats := sc.Stats()
	a, err := h.history.Save(r.Context(), history.Record{
		UserID:    h.userID(r),
		Name:      req.Name,
		Source:    source,
		Threshold: stats.Threshold,
		EdgeCount: stats.Edges,
		Tracks:    sc.Tracks(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, a)
}

// ListHistory lists the caller's analyses (GET /api/history?limit=n).
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, r, badRequest("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	list, err := h.history.List(r.Context(), h.userID(r), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []db.Analysis{}
	}
	h.writeJSON(w, r, http.StatusOK, list)
}

// GetHistory returns one analysis (GET /api/history/{analysisID}).
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	a, err := h.history.Get(r.Context(), h.userID(r), chi.URLParam(r, "analysisID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, a)
}

type reopenRequest struct {
	Settings *settingsPatch `json:"settings"`
	Seed     *uint64        `json:"seed"`
}

// ReopenHistory starts a new scene from a recorded analysis
// (POST /api/history/{analysisID}/scene).
func (h *Handlers) ReopenHistory(w http.ResponseWriter, r *http.Request) {
	var req reopenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.history.Tracks(r.Context(), h.userID(r), chi.URLParam(r, "analysisID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(list) == 0 {
		h.writeError(w, r, tracks.ErrNoTracks)
		return
	}

	id, sc, err := h.createScene(list, req.Settings, req.Seed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, newSceneResponse(id, sc))
}

// DeleteHistory removes an analysis (DELETE /api/history/{analysisID}).
func (h *Handlers) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Delete(r.Context(), h.userID(r), chi.URLParam(r, "analysisID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type favoriteRequest struct {
	Track   *tracks.Track `json:"track"`
	SceneID string        `json:"scene_id"`
	Index   *int          `json:"index"`
}

// AddFavorite marks a track, given inline or as a scene index
// (POST /api/favorites).
func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var t tracks.Track
	switch {
	case req.Track != nil:
		t = *req.Track
	case req.SceneID != "" && req.Index != nil:
		sc, err := h.scenes.Get(req.SceneID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		list := sc.Tracks()
		if *req.Index < 0 || *req.Index >= len(list) {
			h.writeError(w, r, badRequest("index %d out of range", *req.Index))
			return
		}
		t = list[*req.Index]
	default:
		h.writeError(w, r, badRequest("track or scene_id and index are required"))
		return
	}
	if t.ID == "" {
		h.writeError(w, r, badRequest("track has no ID"))
		return
	}

	if err := h.history.AddFavorite(r.Context(), h.userID(r), t); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, t)
}

// ListFavorites lists the caller's favorites (GET /api/favorites).
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.history.Favorites(r.Context(), h.userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if favs == nil {
		favs = []db.Favorite{}
	}
	h.writeJSON(w, r, http.StatusOK, favs)
}

// RemoveFavorite unmarks a track (DELETE /api/favorites/{trackID}).
func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if err := h.history.RemoveFavorite(r.Context(), h.userID(r), chi.URLParam(r, "trackID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
