// Package history records mood-space analyses and favorite tracks.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/justestif/go-spotify-mood-space/internal/db"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// Common errors.
var (
	// ErrInvalidID is returned for malformed analysis IDs.
	ErrInvalidID = errors.New("invalid analysis ID")

	// ErrNoTracks is returned when recording an analysis without tracks.
	ErrNoTracks = errors.New("analysis has no tracks")
)

// Store is the persistence the service needs. *db.DB satisfies it through
// the adapter returned by FromDB.
type Store interface {
	UpsertTracks(ctx context.Context, list []tracks.Track) error
	CreateAnalysis(ctx context.Context, a *db.Analysis, trackIDs []string) error
	GetAnalysis(ctx context.Context, id uuid.UUID) (*db.Analysis, error)
	ListAnalyses(ctx context.Context, userID string, limit int) ([]db.Analysis, error)
	AnalysisTracks(ctx context.Context, id uuid.UUID) ([]tracks.Track, error)
	DeleteAnalysis(ctx context.Context, id uuid.UUID) error
	AddFavorite(ctx context.Context, userID, trackID string) error
	RemoveFavorite(ctx context.Context, userID, trackID string) error
	ListFavorites(ctx context.Context, userID string) ([]db.Favorite, error)
	UpsertUser(ctx context.Context, u *db.User) error
}

// Service handles analysis history and favorites.
type Service struct {
	store Store
}

// New creates a new history service.
func New(store Store) *Service {
	return &Service{store: store}
}

// Record describes an analysis to save.
type Record struct {
	UserID    string
	Name      string
	Source    string
	Threshold float64
	EdgeCount int
	Tracks    []tracks.Track
}

// Save stores the record's tracks and the analysis referencing them.
// Tracks are sanitized first; a blank name defaults to the track count.
func (s *Service) Save(ctx context.Context, rec Record) (*db.Analysis, error) {
	list := tracks.Sanitize(rec.Tracks)
	ids := make([]string, 0, len(list))
	kept := list[:0]
	for _, t := range list {
		if t.ID == "" {
			continue
		}
		ids = append(ids, t.ID)
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return nil, ErrNoTracks
	}

	if err := s.store.UpsertTracks(ctx, kept); err != nil {
		return nil, fmt.Errorf("storing tracks: %w", err)
	}

	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = fmt.Sprintf("%d tracks", len(kept))
	}
	a := &db.Analysis{
		UserID:     rec.UserID,
		Name:       name,
		Source:     rec.Source,
		Threshold:  rec.Threshold,
		TrackCount: len(kept),
		EdgeCount:  rec.EdgeCount,
		Summary:    tracks.Summarize(kept),
	}
	if err := s.store.CreateAnalysis(ctx, a, ids); err != nil {
		return nil, fmt.Errorf("creating analysis: %w", err)
	}
	return a, nil
}

// List returns a user's analyses, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]db.Analysis, error) {
	list, err := s.store.ListAnalyses(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	return list, nil
}

// Get returns an analysis owned by userID. Other users' analyses are
// reported as db.ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (*db.Analysis, error) {
	id, err := parseID(analysisID)
	if err != nil {
		return nil, err
	}
	a, err := s.store.GetAnalysis(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting analysis: %w", err)
	}
	if a.UserID != userID {
		return nil, fmt.Errorf("getting analysis: %w", db.ErrNotFound)
	}
	return a, nil
}

// Tracks reloads the tracks of an analysis in their recorded order.
func (s *Service) Tracks(ctx context.Context, userID, analysisID string) ([]tracks.Track, error) {
	a, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}
	list, err := s.store.AnalysisTracks(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("getting analysis tracks: %w", err)
	}
	return list, nil
}

// Delete removes an analysis owned by userID.
func (s *Service) Delete(ctx context.Context, userID, analysisID string) error {
	a, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAnalysis(ctx, a.ID); err != nil {
		return fmt.Errorf("deleting analysis: %w", err)
	}
	return nil
}

// AddFavorite stores the track and marks it as a favorite.
func (s *Service) AddFavorite(ctx context.Context, userID string, t tracks.Track) error {
	if t.ID == "" {
		return errors.New("favorite track has no ID")
	}
	if err := s.store.UpsertTracks(ctx, tracks.Sanitize([]tracks.Track{t})); err != nil {
		return fmt.Errorf("storing track: %w", err)
	}
	if err := s.store.AddFavorite(ctx, userID, t.ID); err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks a favorite.
func (s *Service) RemoveFavorite(ctx context.Context, userID, trackID string) error {
	if err := s.store.RemoveFavorite(ctx, userID, trackID); err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	return nil
}

// Favorites lists a user's favorites, most recent first.
func (s *Service) Favorites(ctx context.Context, userID string) ([]db.Favorite, error) {
	favs, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	return favs, nil
}

// RememberUser records a logged-in Spotify user.
func (s *Service) RememberUser(ctx context.Context, id, displayName string) error {
	if err := s.store.UpsertUser(ctx, &db.User{ID: id, DisplayName: displayName}); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

// FromDB adapts a database to Store.
func FromDB(database *db.DB) Store {
	return dbStore{database}
}

type dbStore struct{ db *db.DB }

func (s dbStore) UpsertTracks(ctx context.Context, list []tracks.Track) error {
	return s.db.Tracks().UpsertBatch(ctx, list)
}

func (s dbStore) CreateAnalysis(ctx context.Context, a *db.Analysis, trackIDs []string) error {
	return s.db.Analyses().Create(ctx, a, trackIDs)
}

func (s dbStore) GetAnalysis(ctx context.Context, id uuid.UUID) (*db.Analysis, error) {
	return s.db.Analyses().Get(ctx, id)
}

func (s dbStore) ListAnalyses(ctx context.Context, userID string, limit int) ([]db.Analysis, error) {
	return s.db.Analyses().ListForUser(ctx, userID, limit)
}

func (s dbStore) AnalysisTracks(ctx context.Context, id uuid.UUID) ([]tracks.Track, error) {
	return s.db.Analyses().GetTracks(ctx, id)
}

func (s dbStore) DeleteAnalysis(ctx context.Context, id uuid.UUID) error {
	return s.db.Analyses().Delete(ctx, id)
}

func (s dbStore) AddFavorite(ctx context.Context, userID, trackID string) error {
	return s.db.Favorites().Add(ctx, userID, trackID)
}

func (s dbStore) RemoveFavorite(ctx context.Context, userID, trackID string) error {
	return s.db.Favorites().Remove(ctx, userID, trackID)
}

func (s dbStore) ListFavorites(ctx context.Context, userID string) ([]db.Favorite, error) {
	return s.db.Favorites().List(ctx, userID)
}

func (s dbStore) UpsertUser(ctx context.Context, u *db.User) error {
	return s.db.Users().Upsert(ctx, u)
}
