package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListMoods returns the mood catalog in display order (GET /api/moods).
func (h *Handlers) ListMoods(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.moods.All())
}

// GetMood returns one mood's criteria (GET /api/moods/{name}).
func (h *Handlers) GetMood(w http.ResponseWriter, r *http.Request) {
	c, err := h.moods.Get(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, c)
}
