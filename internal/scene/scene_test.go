package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/justestif/go-spotify-mood-space/internal/clustering"
	"github.com/justestif/go-spotify-mood-space/internal/graph"
	"github.com/justestif/go-spotify-mood-space/internal/mood"
	"github.com/justestif/go-spotify-mood-space/internal/space"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

func makeTracks(n int, seed uint64) []tracks.Track {
	rng := rand.New(rand.NewPCG(seed, seed+7))
	out := make([]tracks.Track, n)
	for i := range out {
		out[i] = tracks.Track{
			ID:     fmt.Sprintf("track-%02d", i),
			Name:   fmt.Sprintf("Song %d", i),
			Artist: "Artist",
			Features: tracks.Features{
				Valence:          rng.Float64(),
				Energy:           rng.Float64(),
				Danceability:     rng.Float64(),
				Acousticness:     rng.Float64(),
				Instrumentalness: rng.Float64(),
				MoodScore:        rng.Float64(),
				Popularity:       rng.Float64() * 100,
			},
		}
	}
	return out
}

func TestEndToEnd(t *testing.T) {
	list := makeTracks(20, 1)
	settings := DefaultSettings()
	settings.Threshold = 0.7

	sc := New(list, settings, rand.New(rand.NewPCG(3, 4)))

	want := 0
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			if graph.Similarity(list[i].Features, list[j].Features) >= 0.7 {
				want++
			}
		}
	}

	frame := sc.Frame()
	if len(frame.Nodes) != 20 {
		t.Fatalf("got %d nodes, want 20", len(frame.Nodes))
	}
	if len(frame.Edges) != want {
		t.Errorf("got %d edges, want %d", len(frame.Edges), want)
	}

	frame = sc.Advance(100)
	if frame.Tick != 100 {
		t.Errorf("frame tick = %d, want 100", frame.Tick)
	}

	n0 := frame.Nodes[0]
	got, ok := sc.PickGraph(n0.X, n0.Y)
	if !ok {
		t.Fatal("PickGraph() at node 0 found nothing")
	}
	if got.ID != list[0].ID {
		t.Errorf("PickGraph() = %s, want %s", got.ID, list[0].ID)
	}
}

func TestTickAppliesLayoutThenRotation(t *testing.T) {
	sc := New(makeTracks(8, 2), DefaultSettings(), rand.New(rand.NewPCG(1, 1)))
	before := sc.Frame()

	after := sc.Tick()
	if after.Tick != before.Tick+1 {
		t.Errorf("tick = %d, want %d", after.Tick, before.Tick+1)
	}

	moved := false
	for i := range after.Nodes {
		if after.Nodes[i].X != before.Nodes[i].X || after.Nodes[i].Y != before.Nodes[i].Y {
			moved = true
		}
	}
	if !moved {
		t.Error("no node moved after a simulated tick")
	}

	if math.Abs(after.Rotation.AngleX-space.AutoRotateX) > 1e-12 || math.Abs(after.Rotation.AngleY-space.AutoRotateY) > 1e-12 {
		t.Errorf("rotation = %+v, want one auto-rotate increment", after.Rotation)
	}
}

func TestSetSimulationPauses(t *testing.T) {
	sc := New(makeTracks(8, 3), DefaultSettings(), nil)
	sc.SetSimulation(false)
	before := sc.Frame()

	after := sc.Advance(10)
	for i := range after.Nodes {
		if after.Nodes[i].X != before.Nodes[i].X || after.Nodes[i].Y != before.Nodes[i].Y {
			t.Fatalf("node %d moved while paused", i)
		}
	}
	if after.Simulating {
		t.Error("frame reports simulating while paused")
	}
}

func TestSetThreshold(t *testing.T) {
	list := makeTracks(15, 4)
	sc := New(list, DefaultSettings(), nil)
	sc.Advance(5)

	sc.SetThreshold(0.4)
	frame := sc.Frame()
	if frame.Threshold != 0.4 {
		t.Errorf("threshold = %v, want 0.4", frame.Threshold)
	}
	if frame.Energy != 0 {
		t.Errorf("kinetic energy after rebuild = %v, want 0", frame.Energy)
	}
	for _, e := range frame.Edges {
		if e.Similarity < 0.4 {
			t.Errorf("edge (%d,%d) below new threshold", e.Source, e.Target)
		}
	}
	for _, n := range frame.Nodes {
		for _, c := range n.Connections {
			if c == n.Index {
				t.Errorf("node %d connected to itself", n.Index)
			}
		}
	}

	if got := sc.Settings().Threshold; got != 0.4 {
		t.Errorf("Settings().Threshold = %v, want 0.4", got)
	}
	if got := sc.Stats(); got.Edges != len(frame.Edges) || got.Nodes != 15 {
		t.Errorf("Stats() = %+v, frame has %d edges", got, len(frame.Edges))
	}
}

func TestDragStopsAutoRotate(t *testing.T) {
	sc := New(makeTracks(5, 5), DefaultSettings(), nil)

	sc.BeginDrag()
	frame := sc.Drag(10, 0)
	if !frame.Dragging || frame.AutoRotate {
		t.Errorf("dragging=%v autoRotate=%v, want true/false", frame.Dragging, frame.AutoRotate)
	}
	if math.Abs(frame.Rotation.AngleY-0.1) > 1e-12 {
		t.Errorf("AngleY = %v, want 0.1", frame.Rotation.AngleY)
	}

	frame = sc.Tick()
	if math.Abs(frame.Rotation.AngleY-0.1) > 1e-12 || frame.Rotation.AngleX != 0 {
		t.Errorf("tick during drag rotated to %+v", frame.Rotation)
	}

	sc.EndDrag()
	sc.SetAutoRotate(true)
	frame = sc.Tick()
	if !frame.AutoRotate || frame.Dragging {
		t.Errorf("after re-enabling autoRotate=%v dragging=%v", frame.AutoRotate, frame.Dragging)
	}
}

func TestPickSpace(t *testing.T) {
	list := makeTracks(12, 6)
	sc := New(list, DefaultSettings(), nil)
	frame := sc.Advance(3)

	front := frame.Points[len(frame.Points)-1]
	got, ok := sc.PickSpace(front.X, front.Y)
	if !ok {
		t.Fatal("PickSpace() at a drawn point found nothing")
	}
	if got.ID != list[front.Index].ID {
		t.Errorf("PickSpace() = %s, want %s", got.ID, list[front.Index].ID)
	}

	if _, ok := sc.PickSpace(-1e6, -1e6); ok {
		t.Error("PickSpace() far off canvas should miss")
	}
}

func TestPickSpaceOverlapPrefersFront(t *testing.T) {
	// Same valence and energy project to the same spot; lower danceability
	// sits nearer the viewer and is drawn on top.
	list := []tracks.Track{
		{ID: "far", Features: tracks.Features{Valence: 0.5, Energy: 0.5, Danceability: 0.8}},
		{ID: "near", Features: tracks.Features{Valence: 0.5, Energy: 0.5, Danceability: 0.2}},
	}
	s := DefaultSettings()
	s.AutoRotate = false
	sc := New(list, s, nil)

	frame := sc.Frame()
	if len(frame.Points) != 2 || frame.Points[1].Index != 1 {
		t.Fatalf("points = %+v, want the near track drawn last", frame.Points)
	}
	got, ok := sc.PickSpace(frame.Points[0].X, frame.Points[0].Y)
	if !ok || got.ID != "near" {
		t.Errorf("PickSpace() = %q, %v, want near", got.ID, ok)
	}
}

func TestPointsBackToFront(t *testing.T) {
	sc := New(makeTracks(25, 7), DefaultSettings(), nil)
	frame := sc.Advance(50)
	for i := 1; i < len(frame.Points); i++ {
		if frame.Points[i].Depth > frame.Points[i-1].Depth {
			t.Fatalf("points not sorted by descending depth at %d", i)
		}
	}
}

func TestEmptyScene(t *testing.T) {
	sc := New(nil, DefaultSettings(), nil)
	frame := sc.Advance(5)
	if len(frame.Nodes) != 0 || len(frame.Edges) != 0 || len(frame.Points) != 0 {
		t.Errorf("empty scene frame = %+v", frame)
	}
	if _, ok := sc.PickGraph(400, 300); ok {
		t.Error("PickGraph() on empty scene should miss")
	}
	c, _ := mood.DefaultCatalog().Get("happy")
	if got := sc.Playlist(c, 10, nil); len(got) != 0 {
		t.Errorf("Playlist() on empty scene = %d tracks", len(got))
	}
	if got := sc.Stats(); got.Density != 0 {
		t.Errorf("empty density = %v", got.Density)
	}
}

func TestNonFiniteInputStaysFinite(t *testing.T) {
	list := makeTracks(6, 8)
	list[2].Features.Energy = math.NaN()
	list[4].Features.Valence = math.Inf(1)
	list[5].Features.MoodScore = -3

	sc := New(list, DefaultSettings(), nil)
	frame := sc.Advance(30)
	for _, n := range frame.Nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsInf(n.X, 0) || math.IsInf(n.Y, 0) {
			t.Fatalf("node %d not finite: %+v", n.Index, n)
		}
	}
	for _, p := range frame.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Fatalf("point %d not finite: %+v", p.Index, p)
		}
	}
}

func TestScenePlaylistAndRegions(t *testing.T) {
	list := makeTracks(30, 9)
	sc := New(list, DefaultSettings(), nil)

	c, _ := mood.DefaultCatalog().Get("energetic")
	pl := sc.Playlist(c, 8, rand.New(rand.NewPCG(1, 2)))
	if len(pl) != 8 {
		t.Errorf("Playlist() = %d tracks, want 8", len(pl))
	}

	regions, outliers, err := sc.Regions(clustering.DefaultRegionConfig())
	if err != nil {
		t.Fatalf("Regions() error = %v", err)
	}
	total := len(outliers)
	for _, r := range regions {
		total += len(r.Members)
	}
	if total != len(list) {
		t.Errorf("regions cover %d tracks, want %d", total, len(list))
	}

	if s := sc.Summary(); s.TrackCount != 30 {
		t.Errorf("Summary().TrackCount = %d, want 30", s.TrackCount)
	}
}

func TestNodeColorsMatchPoints(t *testing.T) {
	list := makeTracks(4, 10)
	sc := New(list, DefaultSettings(), nil)
	for _, n := range sc.Frame().Nodes {
		want := space.MoodColor(list[n.Index].Features.MoodScore)
		if n.Color != want {
			t.Errorf("node %d color = %q, want %q", n.Index, n.Color, want)
		}
	}
}

func TestStore(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(WithTTL(time.Minute), withClock(func() time.Time { return now }))

	id, sc, err := store.Create(makeTracks(5, 1), DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == "" || sc == nil {
		t.Fatal("Create() returned empty id or scene")
	}

	got, err := store.Get(id)
	if err != nil || got != sc {
		t.Fatalf("Get() = %p, %v; want %p", got, err, sc)
	}

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if infos := store.List(); len(infos) != 1 || infos[0].ID != id || infos[0].TrackCount != 5 {
		t.Errorf("List() = %+v", infos)
	}

	// Access within the TTL keeps the scene alive.
	now = now.Add(50 * time.Second)
	if _, err := store.Get(id); err != nil {
		t.Errorf("Get() within TTL error = %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after TTL error = %v, want ErrNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired scene still stored")
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore()
	id, _, _ := store.Create(makeTracks(3, 1), DefaultSettings(), nil)

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStoreCleanup(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(WithTTL(time.Minute), withClock(func() time.Time { return now }))

	store.Create(makeTracks(3, 1), DefaultSettings(), nil)
	store.Create(makeTracks(3, 2), DefaultSettings(), nil)
	now = now.Add(30 * time.Second)
	fresh, _, _ := store.Create(makeTracks(3, 3), DefaultSettings(), nil)

	now = now.Add(45 * time.Second)
	if removed := store.Cleanup(); removed != 2 {
		t.Errorf("Cleanup() removed %d, want 2", removed)
	}
	if _, err := store.Get(fresh); err != nil {
		t.Errorf("fresh scene dropped: %v", err)
	}
}

func TestStoreMaxTracks(t *testing.T) {
	store := NewStore(WithMaxTracks(4))
	if _, _, err := store.Create(makeTracks(5, 1), DefaultSettings(), nil); !errors.Is(err, ErrTooManyTracks) {
		t.Errorf("Create() error = %v, want ErrTooManyTracks", err)
	}
	if _, _, err := store.Create(makeTracks(4, 1), DefaultSettings(), nil); err != nil {
		t.Errorf("Create() at the limit error = %v", err)
	}
}
