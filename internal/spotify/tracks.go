package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// Page sizes allowed by the Web API.
const (
	likedSongsPageSize    = 50
	playlistItemsPageSize = 100
)

// FetchLikedSongs retrieves tracks from the user's library, newest first.
// A limit > 0 stops after that many tracks. Artists are joined by ", ".
// Audio features are not filled in; see FetchAudioFeatures.
func (c *Client) FetchLikedSongs(ctx context.Context, limit int) ([]tracks.Track, error) {
	var list []tracks.Track

	page, err := c.api.CurrentUsersTracks(ctx, spotify.Limit(likedSongsPageSize))
	if err != nil {
		return nil, fmt.Errorf("fetching liked songs: %w", err)
	}

	for {
		for _, saved := range page.Tracks {
			list = append(list, convertTrack(saved.FullTrack))
			if limit > 0 && len(list) >= limit {
				c.log.WithField("tracks", len(list)).Info("Reached track limit")
				return list, nil
			}
		}

		c.log.WithField("tracks", len(list)).Debug("Fetched liked songs page")

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}

	c.log.WithField("tracks", len(list)).Info("Fetched liked songs")
	return list, nil
}

// FetchPlaylistTracks retrieves the music tracks of a playlist. Episodes and
// local files without a Spotify ID are skipped. A limit > 0 stops after that
// many tracks.
func (c *Client) FetchPlaylistTracks(ctx context.Context, playlistID string, limit int) ([]tracks.Track, error) {
	var list []tracks.Track

	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(playlistItemsPageSize))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}

	for {
		for _, item := range page.Items {
			full := item.Track.Track
			if full == nil || full.ID == "" {
				continue
			}
			list = append(list, convertTrack(*full))
			if limit > 0 && len(list) >= limit {
				return list, nil
			}
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}

	c.log.WithFields(logrus.Fields{"playlist": playlistID, "tracks": len(list)}).Info("Fetched playlist tracks")
	return list, nil
}

// convertTrack converts a Spotify FullTrack to tracks.Track.
func convertTrack(full spotify.FullTrack) tracks.Track {
	// Join artist names
	artists := make([]string, len(full.Artists))
	for i, a := range full.Artists {
		artists[i] = a.Name
	}

	return tracks.Track{
		ID:     full.ID.String(),
		Name:   full.Name,
		Artist: strings.Join(artists, ", "),
		Features: tracks.Features{
			Popularity: float64(full.Popularity),
		},
	}
}
