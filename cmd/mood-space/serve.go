package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-mood-space/internal/auth"
	"github.com/justestif/go-spotify-mood-space/internal/db"
	"github.com/justestif/go-spotify-mood-space/internal/history"
	"github.com/justestif/go-spotify-mood-space/internal/scene"
	"github.com/justestif/go-spotify-mood-space/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `serve runs the JSON API over mood-space scenes.

Spotify login, import and export are enabled when a client ID and secret are
configured. History and favorites are enabled when a database URL is set.`,
		Args: cobra.NoArgs,
		RunE: a.serve,
	}
	cmd.Flags().String("server.addr", web.DefaultAddr, "listen address")
	cmd.Flags().String("database.url", "", "PostgreSQL URL; empty disables history")
	cmd.Flags().Duration("scenes.ttl", scene.DefaultTTL, "idle time before a scene is dropped")
	cmd.Flags().Int("scenes.max_tracks", 500, "maximum tracks per scene, 0 for no limit")
	addEngineFlags(cmd)
	return cmd
}

func (a *app) serve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	moods, err := a.catalog()
	if err != nil {
		return err
	}

	cfg := web.ServerConfig{
		Addr:     a.cfg.Server.Addr,
		Scenes:   scene.NewStore(scene.WithTTL(a.cfg.Scenes.TTL), scene.WithMaxTracks(a.cfg.Scenes.MaxTracks)),
		Moods:    moods,
		Defaults: a.cfg.SceneSettings(),
		Logger:   a.log,
	}

	spotifyAuth, err := auth.NewSpotifyAuth(a.cfg.Auth())
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		a.log.Warn("Spotify credentials not set; login, import and export are disabled")
	case err != nil:
		return err
	default:
		cfg.Auth = spotifyAuth
	}

	if url := a.cfg.Database.URL; url != "" {
		database, err := db.New(ctx, url)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		cfg.History = history.New(history.FromDB(database))
		cfg.Database = database
		a.log.Info("History enabled")
	}

	return web.NewServer(cfg).Run(ctx)
}
