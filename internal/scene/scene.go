// Package scene runs one interactive mood-space session: a similarity graph
// with its force layout and a rotating 3D view of the same tracks.
//
// A Scene advances in discrete frames. Each Tick completes the layout step
// and the rotation step before the frame snapshot is taken, so picks always
// see fully updated positions.
package scene

import (
	"sync"

	"github.com/justestif/go-spotify-mood-space/internal/clustering"
	"github.com/justestif/go-spotify-mood-space/internal/graph"
	"github.com/justestif/go-spotify-mood-space/internal/mood"
	"github.com/justestif/go-spotify-mood-space/internal/picking"
	"github.com/justestif/go-spotify-mood-space/internal/space"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// Settings are the host-controlled parameters of a scene.
type Settings struct {
	Threshold     float64      `json:"threshold"`
	Layout        graph.Config `json:"-"`
	FocalLength   float64      `json:"focal_length"`
	PickTolerance float64      `json:"pick_tolerance"`
	AutoRotate    bool         `json:"auto_rotate"`
	Simulate      bool         `json:"simulate"`
}

// DefaultSettings returns the reference settings.
func DefaultSettings() Settings {
	return Settings{
		Threshold:     graph.DefaultThreshold,
		Layout:        graph.DefaultConfig(),
		FocalLength:   space.DefaultFocalLength,
		PickTolerance: 10,
		AutoRotate:    true,
		Simulate:      true,
	}
}

// Scene is safe for concurrent use.
type Scene struct {
	mu sync.Mutex

	tracks   []tracks.Track
	graph    *graph.Graph
	sim      *graph.Simulator
	points   []space.Point3D
	rotation *space.RotationState
	settings Settings

	tick  uint64
	frame Frame
}

// New builds a scene over a sanitized copy of list. rnd seeds the initial
// node placement; nil uses the global source.
func New(list []tracks.Track, s Settings, rnd graph.RandomSource) *Scene {
	list = tracks.Sanitize(list)
	sim := graph.NewSimulator(s.Layout)
	s.Layout = sim.Config()
	if !(s.FocalLength > 0) {
		s.FocalLength = space.DefaultFocalLength
	}
	if !(s.PickTolerance >= 0) {
		s.PickTolerance = 0
	}

	sc := &Scene{
		tracks:   list,
		graph:    graph.Build(list, s.Threshold, s.Layout, rnd),
		sim:      sim,
		points:   space.MapTracks(list),
		rotation: space.NewRotationState(s.AutoRotate),
		settings: s,
	}
	sc.settings.Threshold = sc.graph.Threshold
	sc.snapshot()
	return sc
}

// Tick advances one frame: a layout step when simulation is on, then the
// rotation step, then a new snapshot.
func (s *Scene) Tick() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	return s.frame
}

// Advance runs n frames and returns the last one. n < 1 returns the
// current frame unchanged.
func (s *Scene) Advance(n int) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.advance()
	}
	return s.frame
}

func (s *Scene) advance() {
	if s.settings.Simulate {
		s.sim.Step(s.graph.Nodes, s.graph.Edges)
	}
	s.rotation.Tick()
	s.tick++
	s.snapshot()
}

// Frame returns the latest snapshot.
func (s *Scene) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Settings returns the current settings.
func (s *Scene) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.settings
	out.AutoRotate = s.rotation.AutoRotate
	return out
}

// Tracks returns the scene's tracks.
func (s *Scene) Tracks() []tracks.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tracks.Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// SetThreshold rebuilds the edge set. Node positions are kept and
// velocities reset.
func (s *Scene) SetThreshold(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Rebuild(t)
	s.settings.Threshold = s.graph.Threshold
	s.snapshot()
}

// SetSimulation pauses or resumes the layout.
func (s *Scene) SetSimulation(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Simulate = on
	s.snapshot()
}

// SetAutoRotate toggles auto-rotation; enabling it ends any drag.
func (s *Scene) SetAutoRotate(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation.SetAutoRotate(on)
	s.settings.AutoRotate = on
	s.snapshot()
}

// BeginDrag starts rotating the 3D view by pointer and stops auto-rotation.
func (s *Scene) BeginDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation.BeginDrag()
	s.settings.AutoRotate = false
	s.snapshot()
}

// Drag rotates by a pointer delta since the previous drag event.
func (s *Scene) Drag(dx, dy float64) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation.Drag(dx, dy)
	s.snapshot()
	return s.frame
}

// EndDrag finishes a drag.
func (s *Scene) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation.EndDrag()
	s.snapshot()
}

// PickGraph returns the track whose graph node is under (x, y) in the
// current frame.
func (s *Scene) PickGraph(x, y float64) (tracks.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := make([]picking.Target, len(s.frame.Nodes))
	for i, n := range s.frame.Nodes {
		targets[i] = picking.Target{X: n.X, Y: n.Y, Radius: n.Radius, Index: n.Index}
	}
	return s.pick(x, y, targets)
}

// PickSpace returns the track whose projected 3D point is under (x, y) in
// the current frame.
func (s *Scene) PickSpace(x, y float64) (tracks.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Points are stored back to front; the one drawn last wins a tie.
	targets := make([]picking.Target, 0, len(s.frame.Points))
	for i := len(s.frame.Points) - 1; i >= 0; i-- {
		p := s.frame.Points[i]
		targets = append(targets, picking.Target{X: p.X, Y: p.Y, Radius: p.Radius, Index: p.Index})
	}
	return s.pick(x, y, targets)
}

func (s *Scene) pick(x, y float64, targets []picking.Target) (tracks.Track, bool) {
	hit, ok := picking.Pick(x, y, targets, s.settings.PickTolerance)
	if !ok {
		return tracks.Track{}, false
	}
	return s.graph.Track(hit.Index)
}

// Playlist generates a mood playlist from the scene's tracks.
func (s *Scene) Playlist(c mood.Criteria, maxSize int, rnd mood.Shuffler) []mood.ScoredTrack {
	s.mu.Lock()
	list := s.tracks
	s.mu.Unlock()
	// Tracks are immutable after New.
	return mood.GeneratePlaylist(list, c, maxSize, rnd)
}

// Regions clusters the scene's tracks into mood regions.
func (s *Scene) Regions(cfg clustering.RegionConfig) ([]clustering.Region, []int, error) {
	s.mu.Lock()
	list := s.tracks
	s.mu.Unlock()
	return clustering.DetectMoodRegions(list, cfg)
}

// Summary averages the scene's track features.
func (s *Scene) Summary() tracks.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tracks.Summarize(s.tracks)
}

// Stats describes the graph topology.
func (s *Scene) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Nodes:     len(s.graph.Nodes),
		Edges:     len(s.graph.Edges),
		Threshold: s.graph.Threshold,
		Density:   density(len(s.graph.Nodes), len(s.graph.Edges)),
	}
}

// Stats summarizes a similarity graph.
type Stats struct {
	Nodes     int     `json:"nodes"`
	Edges     int     `json:"edges"`
	Threshold float64 `json:"threshold"`
	Density   float64 `json:"density"` // edges over possible pairs
}

func density(nodes, edges int) float64 {
	pairs := nodes * (nodes - 1) / 2
	if pairs == 0 {
		return 0
	}
	return float64(edges) / float64(pairs)
}
