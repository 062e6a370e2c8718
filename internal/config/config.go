// Package config loads mood-space settings from defaults, an optional
// config file, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/justestif/go-spotify-mood-space/internal/auth"
	"github.com/justestif/go-spotify-mood-space/internal/graph"
	"github.com/justestif/go-spotify-mood-space/internal/scene"
	"github.com/justestif/go-spotify-mood-space/internal/space"
)

// EnvPrefix prefixes every environment variable, e.g. MOODSPACE_SERVER_ADDR.
const EnvPrefix = "MOODSPACE"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Spotify  SpotifyConfig  `mapstructure:"spotify"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Moods    MoodsConfig    `mapstructure:"moods"`
	Scenes   ScenesConfig   `mapstructure:"scenes"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	RedirectURI string `mapstructure:"redirect_uri"`
}

type SpotifyConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// DatabaseConfig holds the PostgreSQL URL. An empty URL disables history.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig holds the defaults for new scenes.
type EngineConfig struct {
	Threshold     float64 `mapstructure:"threshold"`
	CanvasWidth   float64 `mapstructure:"canvas_width"`
	CanvasHeight  float64 `mapstructure:"canvas_height"`
	Repulsion     float64 `mapstructure:"repulsion"`
	Centering     float64 `mapstructure:"centering"`
	Spring        float64 `mapstructure:"spring"`
	Damping       float64 `mapstructure:"damping"`
	FocalLength   float64 `mapstructure:"focal_length"`
	PickTolerance float64 `mapstructure:"pick_tolerance"`
	AutoRotate    bool    `mapstructure:"auto_rotate"`
	Simulate      bool    `mapstructure:"simulate"`
}

// MoodsConfig points at an optional TOML catalog that extends the presets.
type MoodsConfig struct {
	CatalogFile string `mapstructure:"catalog_file"`
}

type ScenesConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	MaxTracks int           `mapstructure:"max_tracks"`
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names used by Spotify and PostgreSQL tooling.
	_ = v.BindEnv("spotify.client_id", EnvPrefix+"_SPOTIFY_CLIENT_ID", "SPOTIFY_ID")
	_ = v.BindEnv("spotify.client_secret", EnvPrefix+"_SPOTIFY_CLIENT_SECRET", "SPOTIFY_SECRET")
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	return v
}

func setDefaults(v *viper.Viper) {
	layout := graph.DefaultConfig()
	scn := scene.DefaultSettings()

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.redirect_uri", auth.DefaultRedirectURI)
	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("database.url", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("engine.threshold", graph.DefaultThreshold)
	v.SetDefault("engine.canvas_width", layout.Width)
	v.SetDefault("engine.canvas_height", layout.Height)
	v.SetDefault("engine.repulsion", layout.Repulsion)
	v.SetDefault("engine.centering", layout.Centering)
	v.SetDefault("engine.spring", layout.Spring)
	v.SetDefault("engine.damping", layout.Damping)
	v.SetDefault("engine.focal_length", space.DefaultFocalLength)
	v.SetDefault("engine.pick_tolerance", scn.PickTolerance)
	v.SetDefault("engine.auto_rotate", scn.AutoRotate)
	v.SetDefault("engine.simulate", scn.Simulate)
	v.SetDefault("moods.catalog_file", "")
	v.SetDefault("scenes.ttl", scene.DefaultTTL)
	v.SetDefault("scenes.max_tracks", 500)
}

// BindFlags binds each flag to the key of the same name, so "server.addr"
// is set by --server.addr. Flags that were not changed keep lower-priority
// sources.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			errs = append(errs, fmt.Errorf("binding flag %s: %w", f.Name, err))
		}
	})
	return errors.Join(errs...)
}

// Load reads the optional config file at path and returns the validated
// configuration. The file type follows its extension (toml, yaml, json).
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects out-of-range settings.
func (c *Config) Validate() error {
	var errs []error
	e := c.Engine
	if !(e.Threshold >= 0 && e.Threshold <= 1) {
		errs = append(errs, fmt.Errorf("engine.threshold must be in [0, 1], got %v", e.Threshold))
	}
	if !(e.Damping > 0 && e.Damping < 1) {
		errs = append(errs, fmt.Errorf("engine.damping must be in (0, 1), got %v", e.Damping))
	}
	if !(e.CanvasWidth > 0) || !(e.CanvasHeight > 0) {
		errs = append(errs, fmt.Errorf("canvas size must be positive, got %vx%v", e.CanvasWidth, e.CanvasHeight))
	}
	if !(e.FocalLength > 0) {
		errs = append(errs, fmt.Errorf("engine.focal_length must be positive, got %v", e.FocalLength))
	}
	if e.PickTolerance < 0 {
		errs = append(errs, fmt.Errorf("engine.pick_tolerance must not be negative, got %v", e.PickTolerance))
	}
	if c.Scenes.TTL <= 0 {
		errs = append(errs, fmt.Errorf("scenes.ttl must be positive, got %v", c.Scenes.TTL))
	}
	if c.Scenes.MaxTracks < 0 {
		errs = append(errs, fmt.Errorf("scenes.max_tracks must not be negative, got %d", c.Scenes.MaxTracks))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// SceneSettings converts the engine section into scene defaults.
func (c *Config) SceneSettings() scene.Settings {
	s := scene.DefaultSettings()
	e := c.Engine
	s.Threshold = e.Threshold
	s.Layout.Width = e.CanvasWidth
	s.Layout.Height = e.CanvasHeight
	s.Layout.Repulsion = e.Repulsion
	s.Layout.Centering = e.Centering
	s.Layout.Spring = e.Spring
	s.Layout.Damping = e.Damping
	s.FocalLength = e.FocalLength
	s.PickTolerance = e.PickTolerance
	s.AutoRotate = e.AutoRotate
	s.Simulate = e.Simulate
	return s
}

// Auth returns the Spotify OAuth settings.
func (c *Config) Auth() auth.Config {
	return auth.Config{
		ClientID:     c.Spotify.ClientID,
		ClientSecret: c.Spotify.ClientSecret,
		RedirectURI:  c.Server.RedirectURI,
	}
}
