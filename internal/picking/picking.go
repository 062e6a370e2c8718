// Package picking maps a pointer position back to the nearest drawn node or
// point. It is shared by the graph view and the 3D view.
package picking

import "math"

// Target is a drawn circle that can be picked.
type Target struct {
	X, Y   float64 // screen position of the center
	Radius float64 // drawn radius
	Index  int     // track index the target stands for
}

// Pick returns the target nearest to (x, y) among those whose distance is at
// most max(radius, tolerance). Ties keep the earliest target. It reports
// false when nothing qualifies.
//
// Targets must come from the frame currently on screen; picking against a
// stale layout misses moving nodes.
func Pick(x, y float64, targets []Target, tolerance float64) (Target, bool) {
	if !finite(x) || !finite(y) {
		return Target{}, false
	}
	if !finite(tolerance) || tolerance < 0 {
		tolerance = 0
	}

	best := -1
	bestDist := math.Inf(1)
	for i, t := range targets {
		if !finite(t.X) || !finite(t.Y) {
			continue
		}
		dist := math.Hypot(x-t.X, y-t.Y)
		if dist > math.Max(t.Radius, tolerance) {
			continue
		}
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}

	if best < 0 {
		return Target{}, false
	}
	return targets[best], true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
