package graph

import (
	"math"
	"math/rand/v2"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// DefaultThreshold is the similarity an edge needs by default.
const DefaultThreshold = 0.7

// Node radius bounds, scaled by mood score.
const (
	minNodeRadius   = 6.0
	moodRadiusRange = 8.0
)

// RandomSource supplies uniform floats in [0,1) for initial placement.
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Node is the simulation state of one track.
type Node struct {
	ID     string  // track ID
	Index  int     // index into the graph's track slice
	X, Y   float64 // position
	VX, VY float64 // velocity
	Radius float64
	// Connections holds the indices of neighbouring nodes.
	Connections map[int]struct{}
}

// ConnectedTo reports whether the node shares an edge with node j.
func (n *Node) ConnectedTo(j int) bool {
	_, ok := n.Connections[j]
	return ok
}

// Edge joins two similar tracks. Source is always less than Target.
type Edge struct {
	Source     int     `json:"source"`
	Target     int     `json:"target"`
	Similarity float64 `json:"similarity"`
	Weight     float64 `json:"weight"`
}

// Graph is the similarity graph of a track set.
type Graph struct {
	Nodes     []Node
	Edges     []Edge
	Threshold float64

	tracks []tracks.Track
}

// Build creates one node per track, in input order, at random positions
// inside the canvas, and links every pair whose similarity reaches the
// threshold. Pair evaluation is O(n²).
func Build(list []tracks.Track, threshold float64, cfg Config, rnd RandomSource) *Graph {
	cfg = cfg.withDefaults()
	if rnd == nil {
		rnd = globalRand{}
	}

	g := &Graph{tracks: list}
	g.Nodes = make([]Node, len(list))
	for i, t := range list {
		r := NodeRadius(t.Features)
		g.Nodes[i] = Node{
			ID:     t.ID,
			Index:  i,
			X:      r + rnd.Float64()*math.Max(0, cfg.Width-2*r),
			Y:      r + rnd.Float64()*math.Max(0, cfg.Height-2*r),
			Radius: r,
		}
	}

	g.link(threshold)
	return g
}

// Rebuild recomputes the whole edge set for a new threshold. Positions are
// kept for continuity, velocities are reset and connections rebuilt.
func (g *Graph) Rebuild(threshold float64) {
	nodes := make([]Node, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = Node{
			ID:     n.ID,
			Index:  n.Index,
			X:      n.X,
			Y:      n.Y,
			Radius: n.Radius,
		}
	}
	g.Nodes = nodes
	g.link(threshold)
}

// Track returns the track behind node i.
func (g *Graph) Track(i int) (tracks.Track, bool) {
	if i < 0 || i >= len(g.tracks) {
		return tracks.Track{}, false
	}
	return g.tracks[i], true
}

func (g *Graph) link(threshold float64) {
	g.Threshold = clampThreshold(threshold)
	g.Edges = nil
	for i := range g.Nodes {
		g.Nodes[i].Connections = make(map[int]struct{})
	}

	for i := 0; i < len(g.tracks); i++ {
		for j := i + 1; j < len(g.tracks); j++ {
			sim := Similarity(g.tracks[i].Features, g.tracks[j].Features)
			if sim < g.Threshold {
				continue
			}
			g.Edges = append(g.Edges, Edge{
				Source:     i,
				Target:     j,
				Similarity: sim,
				Weight:     sim,
			})
			g.Nodes[i].Connections[j] = struct{}{}
			g.Nodes[j].Connections[i] = struct{}{}
		}
	}
}

// NodeRadius derives a node's drawn radius from its mood score.
func NodeRadius(f tracks.Features) float64 {
	return minNodeRadius + f.Normalized(tracks.MoodScore)*moodRadiusRange
}

func clampThreshold(t float64) float64 {
	if math.IsNaN(t) {
		return DefaultThreshold
	}
	return math.Max(0, math.Min(1, t))
}
