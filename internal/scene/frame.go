package scene

import (
	"slices"

	"github.com/justestif/go-spotify-mood-space/internal/graph"
	"github.com/justestif/go-spotify-mood-space/internal/space"
)

// Frame is an immutable snapshot of everything the host draws.
type Frame struct {
	Tick       uint64            `json:"tick"`
	Threshold  float64           `json:"threshold"`
	Simulating bool              `json:"simulating"`
	AutoRotate bool              `json:"auto_rotate"`
	Dragging   bool              `json:"dragging"`
	Energy     float64           `json:"kinetic_energy"`
	Rotation   space.Rotation    `json:"rotation"`
	Nodes      []NodeView        `json:"nodes"`
	Edges      []graph.Edge      `json:"edges"`
	Points     []space.Projected `json:"points"` // back to front
}

// NodeView is a graph node as drawn.
type NodeView struct {
	Index       int     `json:"index"`
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	Connections []int   `json:"connections"`
}

// snapshot rebuilds s.frame from the current state. Callers hold s.mu.
func (s *Scene) snapshot() {
	g := s.graph
	nodes := make([]NodeView, len(g.Nodes))
	for i, n := range g.Nodes {
		conns := make([]int, 0, len(n.Connections))
		for j := range n.Connections {
			conns = append(conns, j)
		}
		slices.Sort(conns)

		color := ""
		if n.Index >= 0 && n.Index < len(s.points) {
			color = s.points[n.Index].Color
		}
		nodes[i] = NodeView{
			Index:       n.Index,
			ID:          n.ID,
			X:           n.X,
			Y:           n.Y,
			Radius:      n.Radius,
			Color:       color,
			Connections: conns,
		}
	}

	edges := make([]graph.Edge, len(g.Edges))
	copy(edges, g.Edges)

	cfg := s.settings.Layout
	s.frame = Frame{
		Tick:       s.tick,
		Threshold:  g.Threshold,
		Simulating: s.settings.Simulate,
		AutoRotate: s.rotation.AutoRotate,
		Dragging:   s.rotation.Dragging(),
		Energy:     graph.KineticEnergy(g.Nodes),
		Rotation:   s.rotation.Rotation,
		Nodes:      nodes,
		Edges:      edges,
		Points:     space.ProjectAll(s.points, s.rotation.Rotation, cfg.Width/2, cfg.Height/2, s.settings.FocalLength),
	}
}
