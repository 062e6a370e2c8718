package graph

import "math"

// Config holds the canvas size and force constants of the layout.
type Config struct {
	Width     float64 // canvas width
	Height    float64 // canvas height
	Repulsion float64 // inverse-square repulsion strength
	Centering float64 // pull toward the canvas center
	Spring    float64 // edge spring strength
	Damping   float64 // velocity damping, must be < 1
	// SpringBase and SpringRange set an edge's rest length:
	// SpringBase + (1-similarity)*SpringRange.
	SpringBase  float64
	SpringRange float64
}

// DefaultConfig returns the reference force constants on an 800x600 canvas.
func DefaultConfig() Config {
	return Config{
		Width:       800,
		Height:      600,
		Repulsion:   500,
		Centering:   0.01,
		Spring:      0.1,
		Damping:     0.85,
		SpringBase:  80,
		SpringRange: 100,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.Repulsion <= 0 {
		c.Repulsion = d.Repulsion
	}
	if c.Centering <= 0 {
		c.Centering = d.Centering
	}
	if c.Spring <= 0 {
		c.Spring = d.Spring
	}
	if c.Damping <= 0 || c.Damping >= 1 {
		c.Damping = d.Damping
	}
	if c.SpringBase <= 0 {
		c.SpringBase = d.SpringBase
	}
	if c.SpringRange <= 0 {
		c.SpringRange = d.SpringRange
	}
	return c
}

// Simulator advances a force-directed layout one tick at a time. Node state
// lives in the nodes; the simulator only reuses its force buffers, so it is
// not safe for concurrent use.
type Simulator struct {
	cfg Config
	fx  []float64
	fy  []float64
}

// NewSimulator creates a simulator. Zero or invalid fields of cfg take
// their DefaultConfig values.
func NewSimulator(cfg Config) *Simulator {
	return &Simulator{cfg: cfg.withDefaults()}
}

// Config returns the effective constants.
func (s *Simulator) Config() Config {
	return s.cfg
}

// Step integrates one tick in place: repulsion between every ordered pair,
// centering, edge springs, damped velocity update, then a clamp of every
// position to [radius, size-radius]. Given identical inputs the result is
// bit-for-bit reproducible.
func (s *Simulator) Step(nodes []Node, edges []Edge) {
	n := len(nodes)
	if n == 0 {
		return
	}
	s.resetForces(n)

	cx := s.cfg.Width / 2
	cy := s.cfg.Height / 2

	for i := range nodes {
		for j := range nodes {
			if i == j {
				continue
			}
			dx := nodes[i].X - nodes[j].X
			dy := nodes[i].Y - nodes[j].Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist == 0 {
				continue
			}
			f := s.cfg.Repulsion / (dist * dist)
			s.fx[i] += dx / dist * f
			s.fy[i] += dy / dist * f
		}

		s.fx[i] += s.cfg.Centering * (cx - nodes[i].X)
		s.fy[i] += s.cfg.Centering * (cy - nodes[i].Y)
	}

	for _, e := range edges {
		if e.Source < 0 || e.Source >= n || e.Target < 0 || e.Target >= n {
			continue
		}
		a, b := &nodes[e.Source], &nodes[e.Target]
		dx := b.X - a.X
		dy := b.Y - a.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist == 0 {
			continue
		}
		target := s.cfg.SpringBase + (1-e.Similarity)*s.cfg.SpringRange
		f := (dist - target) * s.cfg.Spring * e.Weight
		ux, uy := dx/dist*f, dy/dist*f
		s.fx[e.Source] += ux
		s.fy[e.Source] += uy
		s.fx[e.Target] -= ux
		s.fy[e.Target] -= uy
	}

	for i := range nodes {
		nd := &nodes[i]
		nd.VX = (nd.VX + s.fx[i]) * s.cfg.Damping
		nd.VY = (nd.VY + s.fy[i]) * s.cfg.Damping
		nd.X += nd.VX
		nd.Y += nd.VY

		if !finite(nd.X, nd.Y, nd.VX, nd.VY) {
			nd.X, nd.Y = cx, cy
			nd.VX, nd.VY = 0, 0
		}
		nd.X = clamp(nd.X, nd.Radius, s.cfg.Width-nd.Radius)
		nd.Y = clamp(nd.Y, nd.Radius, s.cfg.Height-nd.Radius)
	}
}

func (s *Simulator) resetForces(n int) {
	if cap(s.fx) < n {
		s.fx = make([]float64, n)
		s.fy = make([]float64, n)
	}
	s.fx = s.fx[:n]
	s.fy = s.fy[:n]
	for i := range s.fx {
		s.fx[i] = 0
		s.fy[i] = 0
	}
}

// KineticEnergy returns Σ vx²+vy² over the nodes.
func KineticEnergy(nodes []Node) float64 {
	var e float64
	for _, n := range nodes {
		e += n.VX*n.VX + n.VY*n.VY
	}
	return e
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
