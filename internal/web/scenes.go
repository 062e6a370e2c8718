package web

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-mood-space/internal/clustering"
	"github.com/justestif/go-spotify-mood-space/internal/graph"
	"github.com/justestif/go-spotify-mood-space/internal/mood"
	"github.com/justestif/go-spotify-mood-space/internal/scene"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// maxTickSteps caps frames advanced by one tick request.
const maxTickSteps = 600

// settingsPatch holds optional scene settings. Nil fields keep the current
// or default value.
type settingsPatch struct {
	Threshold     *float64 `json:"threshold"`
	FocalLength   *float64 `json:"focal_length"`
	PickTolerance *float64 `json:"pick_tolerance"`
	AutoRotate    *bool    `json:"auto_rotate"`
	Simulate      *bool    `json:"simulate"`
}

func (p *settingsPatch) validate() error {
	if p == nil {
		return nil
	}
	if p.Threshold != nil && !(*p.Threshold >= 0 && *p.Threshold <= 1) {
		return badRequest("threshold must be in [0, 1]")
	}
	if p.FocalLength != nil && !(*p.FocalLength > 0 && !math.IsInf(*p.FocalLength, 0)) {
		return badRequest("focal_length must be positive")
	}
	if p.PickTolerance != nil && !(*p.PickTolerance >= 0 && !math.IsInf(*p.PickTolerance, 0)) {
		return badRequest("pick_tolerance must not be negative")
	}
	return nil
}

// apply overlays the patch on s.
func (p *settingsPatch) apply(s scene.Settings) scene.Settings {
	if p == nil {
		return s
	}
	if p.Threshold != nil {
		s.Threshold = *p.Threshold
	}
	if p.FocalLength != nil {
		s.FocalLength = *p.FocalLength
	}
	if p.PickTolerance != nil {
		s.PickTolerance = *p.PickTolerance
	}
	if p.AutoRotate != nil {
		s.AutoRotate = *p.AutoRotate
	}
	if p.Simulate != nil {
		s.Simulate = *p.Simulate
	}
	return s
}

// placementSource returns a deterministic source for seed, or nil for the
// global one.
func placementSource(seed *uint64) graph.RandomSource {
	if seed == nil {
		return nil
	}
	return rand.New(rand.NewPCG(*seed, *seed))
}

// shuffler is placementSource for playlist shuffling.
func shuffler(seed *uint64) mood.Shuffler {
	if seed == nil {
		return nil
	}
	return rand.New(rand.NewPCG(*seed, *seed))
}

type createSceneRequest struct {
	Tracks   json.RawMessage `json:"tracks"`
	Settings *settingsPatch  `json:"settings"`
	Seed     *uint64         `json:"seed"`
}

type sceneResponse struct {
	ID       string         `json:"id"`
	Settings scene.Settings `json:"settings"`
	Stats    scene.Stats    `json:"stats"`
	Summary  tracks.Summary `json:"summary"`
	Frame    scene.Frame    `json:"frame"`
}

func newSceneResponse(id string, sc *scene.Scene) sceneResponse {
	return sceneResponse{
		ID:       id,
		Settings: sc.Settings(),
		Stats:    sc.Stats(),
		Summary:  sc.Summary(),
		Frame:    sc.Frame(),
	}
}

// CreateScene builds a scene from uploaded tracks (POST /api/scenes).
func (h *Handlers) CreateScene(w http.ResponseWriter, r *http.Request) {
	var req createSceneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(bytes.TrimSpace(req.Tracks)) == 0 {
		h.writeError(w, r, tracks.ErrNoTracks)
		return
	}
	list, err := tracks.Decode(bytes.NewReader(req.Tracks))
	if err != nil {
		h.writeError(w, r, badRequest("%v", err))
		return
	}

	id, sc, err := h.createScene(list, req.Settings, req.Seed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, newSceneResponse(id, sc))
}

// createScene registers a scene over list.
func (h *Handlers) createScene(list []tracks.Track, patch *settingsPatch, seed *uint64) (string, *scene.Scene, error) {
	if err := patch.validate(); err != nil {
		return "", nil, err
	}

	id, sc, err := h.scenes.Create(list, patch.apply(h.defaults), placementSource(seed))
	if err != nil {
		return "", nil, err
	}

	h.log.WithFields(logrus.Fields{"scene": id, "tracks": len(list)}).Info("Scene created")
	return id, sc, nil
}

// scene loads the scene named in the URL.
func (h *Handlers) scene(r *http.Request) (string, *scene.Scene, error) {
	id := chi.URLParam(r, "sceneID")
	sc, err := h.scenes.Get(id)
	return id, sc, err
}

// ListScenes lists live scenes (GET /api/scenes).
func (h *Handlers) ListScenes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.scenes.List())
}

// GetScene returns a scene's settings, stats and latest frame
// (GET /api/scenes/{sceneID}).
func (h *Handlers) GetScene(w http.ResponseWriter, r *http.Request) {
	id, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newSceneResponse(id, sc))
}

// DeleteScene removes a scene (DELETE /api/scenes/{sceneID}).
func (h *Handlers) DeleteScene(w http.ResponseWriter, r *http.Request) {
	if err := h.scenes.Delete(chi.URLParam(r, "sceneID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SceneTracks returns a scene's sanitized tracks (GET /api/scenes/{sceneID}/tracks).
func (h *Handlers) SceneTracks(w http.ResponseWriter, r *http.Request) {
	_, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, sc.Tracks())
}

// GetFrame returns the latest frame without advancing
// (GET /api/scenes/{sceneID}/frame).
func (h *Handlers) GetFrame(w http.ResponseWriter, r *http.Request) {
	_, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, sc.Frame())
}

// Tick advances the scene by ?steps= frames, default 1
// (POST /api/scenes/{sceneID}/tick).
func (h *Handlers) Tick(w http.ResponseWriter, r *http.Request) {
	steps := 1
	if v := r.URL.Query().Get("steps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxTickSteps {
			h.writeError(w, r, badRequest("steps must be an integer in [1, %d]", maxTickSteps))
			return
		}
		steps = n
	}

	_, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, sc.Advance(steps))
}

type settingsResponse struct {
	Settings scene.Settings `json:"settings"`
	Stats    scene.Stats    `json:"stats"`
	Frame    scene.Frame    `json:"frame"`
}

// UpdateSettings changes threshold, simulation or auto-rotation between
// frames (PATCH /api/scenes/{sceneID}/settings).
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch settingsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}
	if patch.FocalLength != nil || patch.PickTolerance != nil {
		h.writeError(w, r, badRequest("focal_length and pick_tolerance are fixed when a scene is created"))
		return
	}
	if err := patch.validate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	_, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if patch.Threshold != nil {
		sc.SetThreshold(*patch.Threshold)
	}
	if patch.Simulate != nil {
		sc.SetSimulation(*patch.Simulate)
	}
	if patch.AutoRotate != nil {
		sc.SetAutoRotate(*patch.AutoRotate)
	}

	h.writeJSON(w, r, http.StatusOK, settingsResponse{
		Settings: sc.Settings(),
		Stats:    sc.Stats(),
		Frame:    sc.Frame(),
	})
}

type dragRequest struct {
	Action string  `json:"action"` // start, move or end
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
}

// Drag rotates the 3D view by pointer (POST /api/scenes/{sceneID}/drag).
func (h *Handlers) Drag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	_, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	switch req.Action {
	case "start":
		sc.BeginDrag()
	case "move":
		sc.Drag(req.DX, req.DY)
	case "end":
		sc.EndDrag()
	default:
		h.writeError(w, r, badRequest("action must be start, move or end"))
		return
	}
	h.writeJSON(w, r, http.StatusOK, sc.Frame())
}

type pickRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	View string  `json:"view"` // graph or space
}

type pickResponse struct {
	Hit   bool          `json:"hit"`
	Track *tracks.Track `json:"track,omitempty"`
}

// Pick returns the track under a pointer in the latest frame
// (POST /api/scenes/{sceneID}/pick).
func (h *Handlers) Pick(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	_, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var (
		t  tracks.Track
		ok bool
	)
	switch req.View {
	case "graph", "":
		t, ok = sc.PickGraph(req.X, req.Y)
	case "space":
		t, ok = sc.PickSpace(req.X, req.Y)
	default:
		h.writeError(w, r, badRequest("view must be graph or space"))
		return
	}

	resp := pickResponse{Hit: ok}
	if ok {
		resp.Track = &t
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

type playlistRequest struct {
	Mood     string         `json:"mood"`
	Criteria *mood.Criteria `json:"criteria"`
	MaxSize  int            `json:"max_size"`
	Seed     *uint64        `json:"seed"`
}

type playlistResponse struct {
	Mood   string             `json:"mood"`
	Tracks []mood.ScoredTrack `json:"tracks"`
}

// criteria resolves a named mood or inline criteria.
func (h *Handlers) criteria(req playlistRequest) (mood.Criteria, error) {
	switch {
	case req.Criteria != nil && req.Mood != "":
		return mood.Criteria{}, badRequest("give either mood or criteria, not both")
	case req.Criteria != nil:
		c := *req.Criteria
		if c.Name == "" {
			c.Name = "custom"
		}
		if err := c.Validate(); err != nil {
			return mood.Criteria{}, badRequest("%v", err)
		}
		return c, nil
	case req.Mood != "":
		return h.moods.Get(req.Mood)
	default:
		return mood.Criteria{}, badRequest("mood or criteria is required")
	}
}

// playlist generates a playlist for a scene from the request.
func (h *Handlers) playlist(sc *scene.Scene, req playlistRequest) (playlistResponse, error) {
	c, err := h.criteria(req)
	if err != nil {
		return playlistResponse{}, err
	}

	picked := sc.Playlist(c, req.MaxSize, shuffler(req.Seed))
	if picked == nil {
		picked = []mood.ScoredTrack{}
	}
	return playlistResponse{Mood: c.Name, Tracks: picked}, nil
}

// Playlist generates a mood playlist from a scene's tracks
// (POST /api/scenes/{sceneID}/playlist).
func (h *Handlers) Playlist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	_, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.playlist(sc, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// Scores ranks every scene track against a mood
// (GET /api/scenes/{sceneID}/scores?mood=name).
func (h *Handlers) Scores(w http.ResponseWriter, r *http.Request) {
	c, err := h.moods.Get(r.URL.Query().Get("mood"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	_, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, playlistResponse{Mood: c.Name, Tracks: mood.Rank(sc.Tracks(), c)})
}

type regionsResponse struct {
	Regions  []clustering.Region     `json:"regions"`
	Outliers []int                   `json:"outliers"`
	Overall  clustering.MoodCategory `json:"overall"`
	Text     string                  `json:"text"`
}

// Regions clusters a scene's tracks into mood regions
// (GET /api/scenes/{sceneID}/regions?k=3&min=3).
func (h *Handlers) Regions(w http.ResponseWriter, r *http.Request) {
	cfg := clustering.DefaultRegionConfig()
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"k", &cfg.NumClusters}, {"min", &cfg.MinClusterSize}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, r, badRequest("%s must be a positive integer", p.name))
			return
		}
		*p.dst = n
	}

	_, sc, err := h.scene(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	regions, outliers, err := sc.Regions(cfg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if regions == nil {
		regions = []clustering.Region{}
	}
	if outliers == nil {
		outliers = []int{}
	}
	h.writeJSON(w, r, http.StatusOK, regionsResponse{
		Regions:  regions,
		Outliers: outliers,
		Overall:  clustering.SummaryCategory(sc.Summary()),
		Text:     clustering.FormatRegionSummary(regions, outliers, sc.Tracks()),
	})
}
