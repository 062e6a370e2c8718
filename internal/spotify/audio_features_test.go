package spotify

import (
	"math"
	"testing"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

func TestApplyAudioFeatures(t *testing.T) {
	features := tracks.Features{Popularity: 42}
	af := &spotify.AudioFeatures{
		Acousticness:     0.5,
		Danceability:     0.75,
		Energy:           0.25,
		Instrumentalness: 0.125,
		Liveness:         0.2,
		Loudness:         -5.0,
		Speechiness:      0.05,
		Tempo:            120.0,
		Valence:          0.5,
	}

	applyAudioFeatures(&features, af)

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"Acousticness", features.Acousticness, 0.5},
		{"Danceability", features.Danceability, 0.75},
		{"Energy", features.Energy, 0.25},
		{"Instrumentalness", features.Instrumentalness, 0.125},
		{"Liveness", features.Liveness, float64(float32(0.2))},
		{"Speechiness", features.Speechiness, float64(float32(0.05))},
		{"Valence", features.Valence, 0.5},
		// 0.5*0.5 + 0.3*0.25 + 0.2*0.75
		{"MoodScore", features.MoodScore, 0.475},
		{"Popularity untouched", features.Popularity, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.expected) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestApplyAudioFeaturesZeroValues(t *testing.T) {
	features := tracks.Features{Energy: 0.9, Valence: 0.9}
	applyAudioFeatures(&features, &spotify.AudioFeatures{})

	if features.Energy != 0 || features.Valence != 0 || features.MoodScore != 0 {
		t.Errorf("zero audio features gave %+v", features)
	}
}

func TestDeriveMoodScore(t *testing.T) {
	tests := []struct {
		name string
		f    tracks.Features
		want float64
	}{
		{"all zero", tracks.Features{}, 0},
		{"all one", tracks.Features{Valence: 1, Energy: 1, Danceability: 1}, 1},
		{"valence only", tracks.Features{Valence: 1}, 0.5},
		{"energy only", tracks.Features{Energy: 1}, 0.3},
		{"out of range clamps", tracks.Features{Valence: 5, Energy: 5, Danceability: 5}, 1},
		{"other features ignored", tracks.Features{Acousticness: 1, Liveness: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveMoodScore(tt.f); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DeriveMoodScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAudioFeaturesBatchCount(t *testing.T) {
	tests := []struct {
		name          string
		totalTracks   int
		expectedCalls int
	}{
		{"empty", 0, 0},
		{"single track", 1, 1},
		{"less than 100", 50, 1},
		{"exactly 100", 100, 1},
		{"101 tracks", 101, 2},
		{"exactly 200", 200, 2},
		{"250 tracks", 250, 3},
		{"1000 tracks", 1000, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := len(batches(tt.totalTracks, maxTracksPerRequest))
			if calls != tt.expectedCalls {
				t.Errorf("got %d API calls, want %d", calls, tt.expectedCalls)
			}
		})
	}
}
