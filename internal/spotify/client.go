// Package spotify provides a wrapper around the Spotify Web API that turns a
// user's library into analysed tracks.
package spotify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
	log logrus.FieldLogger
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{api: api, log: log.WithField("component", "spotify")}
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return string(user.ID), nil
}

// CurrentUser returns the current user's ID and display name.
func (c *Client) CurrentUser(ctx context.Context) (id, name string, err error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", "", fmt.Errorf("getting current user: %w", err)
	}
	return string(user.ID), user.DisplayName, nil
}
