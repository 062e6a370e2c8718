package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/justestif/go-spotify-mood-space/internal/config"
	"github.com/justestif/go-spotify-mood-space/internal/logging"
	"github.com/justestif/go-spotify-mood-space/internal/mood"
	"github.com/justestif/go-spotify-mood-space/internal/scene"
)

// app is the state shared by every subcommand once configuration is loaded.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "mood-space",
		Short: "Explore a music library as a mood space",
		Long: `mood-space lays out tracks as a similarity graph and a rotating 3D
space of valence, energy and danceability, and builds playlists for moods.

Configuration comes from flags, MOODSPACE_* environment variables and an
optional config file, in that order of priority.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (TOML, YAML or JSON)")
	flags.String("logging.level", "info", "log level: debug, info, warn or error")
	flags.String("logging.format", "text", "log format: text or json")
	flags.String("moods.catalog_file", "", "TOML file with extra moods")

	root.AddCommand(
		newServeCmd(a),
		newMoodsCmd(a),
		newPlaylistCmd(a),
		newGraphCmd(a),
		newRegionsCmd(a),
		newFetchCmd(a),
	)
	return root
}

// load binds the command's flags and reads the configuration.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	// Load .env file if it exists (for Spotify credentials)
	envLoaded := false
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("loading .env: %w", err)
		}
		envLoaded = true
	}

	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	log, err := logging.NewWithOutput(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log

	if envLoaded {
		log.Debug("Loaded .env")
	}
	if a.cfgFile != "" {
		log.WithField("file", a.cfgFile).Debug("Loaded config file")
	}
	return nil
}

// catalog returns the built-in moods, extended by the configured file.
func (a *app) catalog() (*mood.Catalog, error) {
	path := a.cfg.Moods.CatalogFile
	if path == "" {
		return mood.DefaultCatalog(), nil
	}
	c, err := mood.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	a.log.WithFields(logrus.Fields{"file": path, "moods": len(c.Names())}).Debug("Loaded mood catalog")
	return c, nil
}

// addEngineFlags registers the scene settings flags on cmd.
func addEngineFlags(cmd *cobra.Command) {
	d := scene.DefaultSettings()
	flags := cmd.Flags()
	flags.Float64("engine.threshold", d.Threshold, "minimum similarity for a graph edge, in [0, 1]")
	flags.Float64("engine.canvas_width", d.Layout.Width, "graph canvas width")
	flags.Float64("engine.canvas_height", d.Layout.Height, "graph canvas height")
	flags.Float64("engine.damping", d.Layout.Damping, "velocity damping per layout step, in (0, 1)")
	flags.Float64("engine.focal_length", d.FocalLength, "3D perspective focal length")
	flags.Bool("engine.auto_rotate", d.AutoRotate, "rotate the 3D view each frame")
	flags.Bool("engine.simulate", d.Simulate, "run the force layout each frame")
}
