// Package graph builds the track similarity graph and relaxes it into a 2D
// force-directed layout.
package graph

import (
	"math"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// similarityFeatures defines the audio features compared by Similarity.
var similarityFeatures = []tracks.Feature{
	tracks.Valence,
	tracks.Energy,
	tracks.Danceability,
	tracks.Acousticness,
	tracks.Instrumentalness,
}

// Similarity returns 1 minus the mean absolute difference of the two vectors
// over valence, energy, danceability, acousticness and instrumentalness.
// The result is symmetric and in [0,1]; it is 1 only for identical vectors
// on those features.
func Similarity(a, b tracks.Features) float64 {
	var diff float64
	for _, f := range similarityFeatures {
		diff += math.Abs(a.Normalized(f) - b.Normalized(f))
	}
	return 1 - diff/float64(len(similarityFeatures))
}
