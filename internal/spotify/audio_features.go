package spotify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// Mood score weights for derived scores.
const (
	moodValenceWeight      = 0.5
	moodEnergyWeight       = 0.3
	moodDanceabilityWeight = 0.2
)

// FetchAudioFeatures retrieves audio features for the given tracks.
// Updates tracks in-place with their audio features and a derived mood score.
// Batches requests to max 100 tracks per request per Spotify API limits.
// Tracks without available audio features keep zero features.
func (c *Client) FetchAudioFeatures(ctx context.Context, list []tracks.Track) error {
	if len(list) == 0 {
		return nil
	}

	// Playlists may list a track more than once; every copy gets the features.
	ids := make([]spotify.ID, 0, len(list))
	indexByID := make(map[string][]int, len(list))
	for i, t := range list {
		if _, seen := indexByID[t.ID]; !seen {
			ids = append(ids, spotify.ID(t.ID))
		}
		indexByID[t.ID] = append(indexByID[t.ID], i)
	}

	total := len(ids)
	found := 0

	// Fetch in batches of 100
	for _, b := range batches(total, maxTracksPerRequest) {
		c.log.Debugf("Fetching audio features %d-%d of %d", b.start+1, b.end, total)

		features, err := c.api.GetAudioFeatures(ctx, ids[b.start:b.end]...)
		if err != nil {
			return fmt.Errorf("fetching audio features (batch %d-%d): %w", b.start+1, b.end, err)
		}

		// Map features back to tracks
		for _, f := range features {
			if f == nil {
				continue // Track has no audio features
			}
			for _, idx := range indexByID[f.ID.String()] {
				applyAudioFeatures(&list[idx].Features, f)
				found++
			}
		}
	}

	c.log.WithFields(logrus.Fields{"tracks": total, "with_features": found}).Info("Fetched audio features")
	return nil
}

// applyAudioFeatures copies audio feature values to a track's features and
// derives its mood score. Popularity is left untouched.
func applyAudioFeatures(f *tracks.Features, af *spotify.AudioFeatures) {
	f.Acousticness = float64(af.Acousticness)
	f.Danceability = float64(af.Danceability)
	f.Energy = float64(af.Energy)
	f.Instrumentalness = float64(af.Instrumentalness)
	f.Liveness = float64(af.Liveness)
	f.Speechiness = float64(af.Speechiness)
	f.Valence = float64(af.Valence)
	f.MoodScore = DeriveMoodScore(*f)
}

// DeriveMoodScore estimates a [0,1] mood score from valence, energy and
// danceability.
func DeriveMoodScore(f tracks.Features) float64 {
	score := moodValenceWeight*f.Normalized(tracks.Valence) +
		moodEnergyWeight*f.Normalized(tracks.Energy) +
		moodDanceabilityWeight*f.Normalized(tracks.Danceability)
	return min(max(score, 0), 1)
}
