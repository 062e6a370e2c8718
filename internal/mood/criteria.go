// Package mood scores tracks against named mood targets and builds
// mood-targeted playlists from the best matches.
package mood

import (
	"math"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// Rule constrains one feature. Min and Max are optional bounds on the
// feature's [0,1] scale (popularity is divided by 100 first). Weight sets the
// rule's share of the overall score.
type Rule struct {
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Weight float64  `json:"weight"`
}

// Criteria is a named set of feature rules describing a target mood.
// Criteria from a Catalog are shared and must be treated as read-only.
type Criteria struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Rules       map[tracks.Feature]Rule `json:"rules"`
}

// ScoredTrack pairs a track with its score against some criteria.
type ScoredTrack struct {
	Track tracks.Track `json:"track"`
	Index int          `json:"index"`
	Score float64      `json:"score"`
}

// Score returns the weighted average of the per-rule scores in [0,1].
// Weights are normalized by their sum; negative or non-finite weights count
// as 0, and a zero total weight scores 0.
func Score(t tracks.Track, c Criteria) float64 {
	var sum, total float64
	// Iterate in a fixed order so sums are reproducible.
	for _, feature := range tracks.AllFeatures {
		rule, ok := c.Rules[feature]
		if !ok {
			continue
		}
		w := rule.Weight
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			continue
		}
		sum += w * rule.Score(t.Features.Normalized(feature))
		total += w
	}
	if total == 0 {
		return 0
	}
	return clamp01(sum / total)
}

// Score rates a single normalized feature value against the rule:
//   - inside [Min, Max] (either bound may be absent) the score is 1
//   - below Min the score is value/Min
//   - above Max the score is (1-value)/(1-Max)
//
// A rule without bounds always scores 1.
func (r Rule) Score(value float64) float64 {
	if math.IsNaN(value) {
		value = 0
	}
	if r.Min != nil && value < *r.Min {
		if *r.Min <= 0 {
			return 0
		}
		return clamp01(value / *r.Min)
	}
	if r.Max != nil && value > *r.Max {
		if *r.Max >= 1 {
			return 0
		}
		return clamp01((1 - value) / (1 - *r.Max))
	}
	return 1
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Bound returns a pointer to v, for building rules in literals.
func Bound(v float64) *float64 {
	return &v
}
