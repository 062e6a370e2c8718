package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-mood-space/internal/graph"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// ErrNotFound is returned for unknown or expired scene IDs.
var ErrNotFound = errors.New("scene not found")

// ErrTooManyTracks is returned when a scene would exceed the store's limit.
var ErrTooManyTracks = errors.New("too many tracks for one scene")

// DefaultTTL is how long an idle scene is kept.
const DefaultTTL = time.Hour

// entry pairs a scene with its bookkeeping.
type entry struct {
	scene    *Scene
	created  time.Time
	lastUsed time.Time
}

// Info describes a stored scene.
type Info struct {
	ID         string    `json:"id"`
	TrackCount int       `json:"track_count"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// Store keeps scenes in memory, keyed by UUID. Scenes idle for longer than
// the TTL are dropped lazily on access and by Cleanup.
type Store struct {
	mu        sync.RWMutex
	scenes    map[string]*entry
	ttl       time.Duration
	maxTracks int
	now       func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets the idle expiry. Non-positive values keep the default.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxTracks limits the tracks per scene. Zero means no limit.
func WithMaxTracks(n int) StoreOption {
	return func(s *Store) {
		if n >= 0 {
			s.maxTracks = n
		}
	}
}

// withClock overrides time.Now in tests.
func withClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		scenes: make(map[string]*entry),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create builds a scene and registers it under a fresh ID.
func (s *Store) Create(list []tracks.Track, settings Settings, rnd graph.RandomSource) (string, *Scene, error) {
	if s.maxTracks > 0 && len(list) > s.maxTracks {
		return "", nil, fmt.Errorf("%w: %d tracks, limit %d", ErrTooManyTracks, len(list), s.maxTracks)
	}

	sc := New(list, settings, rnd)
	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	s.scenes[id] = &entry{scene: sc, created: now, lastUsed: now}
	s.mu.Unlock()

	return id, sc, nil
}

// Get returns a live scene and marks it used.
func (s *Store) Get(id string) (*Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.scenes[id]
	if !ok {
		return nil, ErrNotFound
	}

	now := s.now()
	if now.Sub(e.lastUsed) > s.ttl {
		delete(s.scenes, id)
		return nil, ErrNotFound
	}
	e.lastUsed = now
	return e.scene, nil
}

// Delete removes a scene.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scenes[id]; !ok {
		return ErrNotFound
	}
	delete(s.scenes, id)
	return nil
}

// List describes every live scene.
func (s *Store) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make([]Info, 0, len(s.scenes))
	for id, e := range s.scenes {
		if now.Sub(e.lastUsed) > s.ttl {
			continue
		}
		out = append(out, Info{
			ID:         id,
			TrackCount: len(e.scene.tracks),
			CreatedAt:  e.created,
			LastUsedAt: e.lastUsed,
		})
	}
	return out
}

// Len returns the number of stored scenes, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scenes)
}

// Cleanup drops expired scenes and returns how many were removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.scenes {
		if now.Sub(e.lastUsed) > s.ttl {
			delete(s.scenes, id)
			removed++
		}
	}
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration, log logrus.FieldLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Cleanup(); n > 0 {
				log.WithField("removed", n).Debug("expired scenes removed")
			}
		}
	}
}
