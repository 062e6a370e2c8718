package spotify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
)

const maxTracksPerRequest = 100

// CreatePlaylist creates a new playlist for the current user.
// Returns the playlist ID.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return "", err
	}

	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}

	return playlist.ID.String(), nil
}

// AddTracksToPlaylist adds tracks to a playlist, handling batching for large sets.
// Spotify allows max 100 tracks per request.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	// Convert to spotify.ID
	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	for _, b := range batches(len(ids), maxTracksPerRequest) {
		_, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[b.start:b.end]...)
		if err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", b.start+1, b.end, err)
		}
	}

	return nil
}

// ExportPlaylist creates a playlist and fills it with the given tracks.
// Returns the new playlist ID.
func (c *Client) ExportPlaylist(ctx context.Context, name, description string, public bool, trackIDs []string) (string, error) {
	id, err := c.CreatePlaylist(ctx, name, description, public)
	if err != nil {
		return "", err
	}
	if err := c.AddTracksToPlaylist(ctx, id, trackIDs); err != nil {
		return id, err
	}
	c.log.WithFields(logrus.Fields{"playlist": id, "tracks": len(trackIDs)}).Info("Exported playlist")
	return id, nil
}

type batch struct{ start, end int }

// batches splits n items into consecutive ranges of at most size.
func batches(n, size int) []batch {
	var out []batch
	for i := 0; i < n; i += size {
		out = append(out, batch{i, min(i+size, n)})
	}
	return out
}
