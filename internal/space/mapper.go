// Package space places tracks in a 3D feature space and projects them onto a
// 2D canvas.
//
// Coordinates are a fixed affine map of three features (valence, energy and
// danceability) and never depend on rotation. Rotation and perspective are
// applied per frame by Project.
package space

import (
	"fmt"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// Extent is the side length of the feature cube in scene units.
const Extent = 400

// Point3D is a track positioned in feature space.
type Point3D struct {
	X, Y, Z float64
	Index   int    // index into the track slice
	TrackID string // ID of the track
	Color   string // CSS hsl() colour derived from mood score
}

// MapTrack maps a track to its point: each axis is (feature-0.5)*Extent, so
// the cube is centered on the origin.
func MapTrack(t tracks.Track, index int) Point3D {
	f := t.Features
	return Point3D{
		X:       axis(f.Normalized(tracks.Valence)),
		Y:       axis(f.Normalized(tracks.Energy)),
		Z:       axis(f.Normalized(tracks.Danceability)),
		Index:   index,
		TrackID: t.ID,
		Color:   MoodColor(f.Normalized(tracks.MoodScore)),
	}
}

// MapTracks maps every track, preserving order.
func MapTracks(list []tracks.Track) []Point3D {
	points := make([]Point3D, len(list))
	for i, t := range list {
		points[i] = MapTrack(t, i)
	}
	return points
}

// MoodColor returns the colour for a mood score: hue 0 (red) at 0 through
// hue 120 (green) at 1.
func MoodColor(mood float64) string {
	return fmt.Sprintf("hsl(%g, 70%%, 50%%)", MoodHue(mood))
}

// MoodHue returns the hue in degrees for a mood score.
func MoodHue(mood float64) float64 {
	if mood != mood || mood < 0 {
		mood = 0
	}
	if mood > 1 {
		mood = 1
	}
	return mood * 120
}

func axis(v float64) float64 {
	return (v - 0.5) * Extent
}
