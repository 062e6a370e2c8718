// Package web provides the HTTP JSON API over mood-space scenes.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/justestif/go-spotify-mood-space/internal/history"
	"github.com/justestif/go-spotify-mood-space/internal/mood"
	"github.com/justestif/go-spotify-mood-space/internal/scene"
)

const (
	// DefaultAddr is the default server address.
	DefaultAddr = "127.0.0.1:8080"

	defaultCleanupInterval = time.Minute
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr     string
	Auth     *spotifyauth.Authenticator // nil disables Spotify login, import and export
	Scenes   *scene.Store               // nil uses a store with default options
	Moods    *mood.Catalog              // nil uses the built-in presets
	History  *history.Service           // nil disables history and favorites
	Defaults scene.Settings             // settings for new scenes
	Library  LibraryFactory             // nil uses the Spotify Web API when Auth is set
	Database Pinger                     // nil skips the database health check
	Logger   logrus.FieldLogger

	CleanupInterval time.Duration
}

// Pinger checks that a backing store is reachable. *db.DB satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the web application.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	scenes   *scene.Store
	log      logrus.FieldLogger
	cleanup  time.Duration
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) *Server {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "web")

	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Scenes == nil {
		cfg.Scenes = scene.NewStore()
	}
	if cfg.Moods == nil {
		cfg.Moods = mood.DefaultCatalog()
	}
	if cfg.Library == nil && cfg.Auth != nil {
		cfg.Library = spotifyLibrary(cfg.Auth, log)
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}

	handlers := &Handlers{
		auth:     cfg.Auth,
		sessions: NewSessionStore(),
		scenes:   cfg.Scenes,
		moods:    cfg.Moods,
		history:  cfg.History,
		library:  cfg.Library,
		database: cfg.Database,
		defaults: cfg.Defaults,
		log:      log,
	}

	s := &Server{
		router:   chi.NewRouter(),
		handlers: handlers,
		scenes:   cfg.Scenes,
		log:      log,
		cleanup:  cfg.CleanupInterval,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // library imports page through the Web API
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.Get("/healthz", h.Health)

	// Auth routes
	s.router.Get("/auth/login", h.Login)
	s.router.Get("/callback", h.Callback)
	s.router.Post("/auth/logout", h.Logout)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/me", h.Me)

		r.Get("/moods", h.ListMoods)
		r.Get("/moods/{name}", h.GetMood)

		r.Route("/scenes", func(r chi.Router) {
			r.Get("/", h.ListScenes)
			r.Post("/", h.CreateScene)

			r.Route("/{sceneID}", func(r chi.Router) {
				r.Get("/", h.GetScene)
				r.Delete("/", h.DeleteScene)
				r.Get("/tracks", h.SceneTracks)
				r.Get("/frame", h.GetFrame)
				r.Post("/tick", h.Tick)
				r.Patch("/settings", h.UpdateSettings)
				r.Post("/drag", h.Drag)
				r.Post("/pick", h.Pick)
				r.Post("/playlist", h.Playlist)
				r.Get("/scores", h.Scores)
				r.Get("/regions", h.Regions)
				r.Post("/export", h.Export)
				r.With(h.requireHistory).Post("/save", h.SaveScene)
			})
		})

		r.Post("/spotify/import", h.Import)

		r.Group(func(r chi.Router) {
			r.Use(h.requireHistory)

			r.Get("/history", h.ListHistory)
			r.Get("/history/{analysisID}", h.GetHistory)
			r.Post("/history/{analysisID}/scene", h.ReopenHistory)
			r.Delete("/history/{analysisID}", h.DeleteHistory)

			r.Get("/favorites", h.ListFavorites)
			r.Post("/favorites", h.AddFavorite)
			r.Delete("/favorites/{trackID}", h.RemoveFavorite)
		})
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.WithField("addr", s.server.Addr).Infof("Starting server at http://%s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is done, then shuts down gracefully. Expired scenes
// are swept in the background while the server runs.
func (s *Server) Run(ctx context.Context) error {
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go s.scenes.RunCleanup(cleanupCtx, s.cleanup, s.log)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down server...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.log.Info("Server stopped")
	return nil
}
