package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-mood-space/internal/auth"
	spotifyclient "github.com/justestif/go-spotify-mood-space/internal/spotify"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

func newFetchCmd(a *app) *cobra.Command {
	var (
		playlistID string
		limit      int
		out        string
		logout     bool
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download liked songs or a playlist with audio features",
		Long: `fetch logs in to Spotify in the browser (the token is cached for later
runs), downloads your liked songs or a playlist, adds audio features and
writes a track file usable by the other commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			authenticator, err := auth.New(a.cfg.Auth(), a.log)
			if err != nil {
				return err
			}
			if logout {
				if err := authenticator.Logout(); err != nil {
					return fmt.Errorf("removing cached token: %w", err)
				}
				a.log.Info("Cached token removed")
			}

			api, err := authenticator.Authenticate(cmd.Context())
			if err != nil {
				return err
			}
			client := spotifyclient.New(api, a.log)

			var list []tracks.Track
			if playlistID != "" {
				list, err = client.FetchPlaylistTracks(cmd.Context(), playlistID, limit)
			} else {
				list, err = client.FetchLikedSongs(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			if len(list) == 0 {
				return tracks.ErrNoTracks
			}
			if err := client.FetchAudioFeatures(cmd.Context(), list); err != nil {
				return err
			}

			if err := tracks.WriteFile(out, list); err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"tracks": len(list), "file": out}).Info("Tracks saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&playlistID, "playlist", "", "playlist ID to fetch instead of liked songs")
	cmd.Flags().IntVar(&limit, "limit", 500, "maximum tracks to fetch, 0 for all")
	cmd.Flags().StringVarP(&out, "out", "o", "tracks.json", "output track file")
	cmd.Flags().BoolVar(&logout, "logout", false, "forget the cached token and log in again")
	cmd.Flags().String("server.redirect_uri", auth.DefaultRedirectURI, "OAuth redirect URI registered with Spotify")
	return cmd
}
