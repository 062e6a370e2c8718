// Package tracks defines the track model and the audio feature vector every
// mood-space engine consumes.
package tracks

import (
	"fmt"
	"math"
	"strings"
)

// Feature names a single audio descriptor of a track.
type Feature string

// Audio features supplied by the analysis source.
const (
	Valence          Feature = "valence"
	Energy           Feature = "energy"
	Danceability     Feature = "danceability"
	Acousticness     Feature = "acousticness"
	Instrumentalness Feature = "instrumentalness"
	Speechiness      Feature = "speechiness"
	Liveness         Feature = "liveness"
	Popularity       Feature = "popularity"
	MoodScore        Feature = "mood_score"
)

// MaxPopularity is the upper bound of the popularity scale.
const MaxPopularity = 100

// AllFeatures lists every feature in a stable order.
var AllFeatures = []Feature{
	Valence,
	Energy,
	Danceability,
	Acousticness,
	Instrumentalness,
	Speechiness,
	Liveness,
	Popularity,
	MoodScore,
}

// ParseFeature resolves a feature name, case-insensitively.
func ParseFeature(name string) (Feature, error) {
	key := Feature(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range AllFeatures {
		if f == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown feature %q", name)
}

// Features holds a track's audio descriptors. All values are in [0,1]
// except Popularity, which is in [0,100].
type Features struct {
	Valence          float64 `json:"valence"`
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Speechiness      float64 `json:"speechiness"`
	Liveness         float64 `json:"liveness"`
	Popularity       float64 `json:"popularity"`
	MoodScore        float64 `json:"mood_score"`
}

// Track is an analysed song. Tracks are read-only once loaded.
type Track struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Artist   string   `json:"artist"`
	Features Features `json:"features"`
}

// Value returns the raw value of a feature. Unknown features and
// non-finite values read as 0.
func (f Features) Value(key Feature) float64 {
	var v float64
	switch key {
	case Valence:
		v = f.Valence
	case Energy:
		v = f.Energy
	case Danceability:
		v = f.Danceability
	case Acousticness:
		v = f.Acousticness
	case Instrumentalness:
		v = f.Instrumentalness
	case Speechiness:
		v = f.Speechiness
	case Liveness:
		v = f.Liveness
	case Popularity:
		v = f.Popularity
	case MoodScore:
		v = f.MoodScore
	}
	if !isFinite(v) {
		return 0
	}
	return v
}

// Normalized returns the feature value on a [0,1] scale.
func (f Features) Normalized(key Feature) float64 {
	v := f.Value(key)
	if key == Popularity {
		v /= MaxPopularity
	}
	return clamp(v, 0, 1)
}

// Sanitize returns a copy with non-finite values replaced by 0 and every
// feature clamped to its valid range.
func (f Features) Sanitize() Features {
	return Features{
		Valence:          unit(f.Valence),
		Energy:           unit(f.Energy),
		Danceability:     unit(f.Danceability),
		Acousticness:     unit(f.Acousticness),
		Instrumentalness: unit(f.Instrumentalness),
		Speechiness:      unit(f.Speechiness),
		Liveness:         unit(f.Liveness),
		Popularity:       clampFinite(f.Popularity, 0, MaxPopularity),
		MoodScore:        unit(f.MoodScore),
	}
}

// Sanitize returns a copy of the tracks with sanitized features.
func Sanitize(in []Track) []Track {
	out := make([]Track, len(in))
	for i, t := range in {
		t.Features = t.Features.Sanitize()
		out[i] = t
	}
	return out
}

func unit(v float64) float64 {
	return clampFinite(v, 0, 1)
}

func clampFinite(v, lo, hi float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return clamp(v, lo, hi)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
