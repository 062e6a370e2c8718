package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/justestif/go-spotify-mood-space/internal/db"
	"github.com/justestif/go-spotify-mood-space/internal/history"
	"github.com/justestif/go-spotify-mood-space/internal/mood"
	"github.com/justestif/go-spotify-mood-space/internal/scene"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// maxBodyBytes bounds request bodies; track uploads are the largest.
const maxBodyBytes = 8 << 20

var (
	errBadRequest      = errors.New("bad request")
	errUnauthorized    = errors.New("not logged in to Spotify")
	errHistoryDisabled = errors.New("history is disabled: no database configured")
	errLoginDisabled   = errors.New("spotify login is not configured")
)

type errorResponse struct {
	Error string `json:"error"`
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// writeJSON writes v with the given status. The header is already sent when
// encoding fails, so the error is only logged.
func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("Encoding response failed")
	}
}

// statusFor maps errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scene.ErrNotFound),
		errors.Is(err, mood.ErrUnknownMood),
		errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, tracks.ErrNoTracks),
		errors.Is(err, history.ErrInvalidID),
		errors.Is(err, history.ErrNoTracks):
		return http.StatusBadRequest
	case errors.Is(err, scene.ErrTooManyTracks):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errHistoryDisabled), errors.Is(err, errLoginDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as {"error": "..."}. Internal errors are logged and
// not shown to the client.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("Request failed")
		msg = http.StatusText(status)
	}
	h.writeJSON(w, r, status, errorResponse{Error: msg})
}

// decodeJSON reads a JSON body into v. An empty body leaves v unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}
