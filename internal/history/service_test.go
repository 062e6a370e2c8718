package history

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-spotify-mood-space/internal/db"
	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// memStore is an in-memory Store.
type memStore struct {
	tracks    map[string]tracks.Track
	analyses  map[uuid.UUID]db.Analysis
	links     map[uuid.UUID][]string
	favorites map[string][]string
	users     map[string]string
	failWith  error
}

func newMemStore() *memStore {
	return &memStore{
		tracks:    make(map[string]tracks.Track),
		analyses:  make(map[uuid.UUID]db.Analysis),
		links:     make(map[uuid.UUID][]string),
		favorites: make(map[string][]string),
		users:     make(map[string]string),
	}
}

func (m *memStore) UpsertTracks(_ context.Context, list []tracks.Track) error {
	if m.failWith != nil {
		return m.failWith
	}
	for _, t := range list {
		m.tracks[t.ID] = t
	}
	return nil
}

func (m *memStore) CreateAnalysis(_ context.Context, a *db.Analysis, ids []string) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.analyses[a.ID] = *a
	m.links[a.ID] = append([]string(nil), ids...)
	return nil
}

func (m *memStore) GetAnalysis(_ context.Context, id uuid.UUID) (*db.Analysis, error) {
	a, ok := m.analyses[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) ListAnalyses(_ context.Context, userID string, _ int) ([]db.Analysis, error) {
	var out []db.Analysis
	for _, a := range m.analyses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) AnalysisTracks(_ context.Context, id uuid.UUID) ([]tracks.Track, error) {
	var out []tracks.Track
	for _, tid := range m.links[id] {
		out = append(out, m.tracks[tid])
	}
	return out, nil
}

func (m *memStore) DeleteAnalysis(_ context.Context, id uuid.UUID) error {
	if _, ok := m.analyses[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.analyses, id)
	delete(m.links, id)
	return nil
}

func (m *memStore) AddFavorite(_ context.Context, userID, trackID string) error {
	m.favorites[userID] = append(m.favorites[userID], trackID)
	return nil
}

func (m *memStore) RemoveFavorite(_ context.Context, userID, trackID string) error {
	favs := m.favorites[userID]
	for i, id := range favs {
		if id == trackID {
			m.favorites[userID] = append(favs[:i], favs[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *memStore) ListFavorites(_ context.Context, userID string) ([]db.Favorite, error) {
	var out []db.Favorite
	for _, id := range m.favorites[userID] {
		out = append(out, db.Favorite{Track: m.tracks[id]})
	}
	return out, nil
}

func (m *memStore) UpsertUser(_ context.Context, u *db.User) error {
	m.users[u.ID] = u.DisplayName
	return nil
}

func sampleTracks() []tracks.Track {
	return []tracks.Track{
		{ID: "a", Name: "A", Features: tracks.Features{Valence: 0.8, Energy: math.NaN()}},
		{Name: "no id"},
		{ID: "b", Name: "B", Features: tracks.Features{Valence: 0.4, Energy: 2}},
	}
}

func TestSave(t *testing.T) {
	store := newMemStore()
	svc := New(store)
	ctx := context.Background()

	a, err := svc.Save(ctx, Record{UserID: "u", Source: "upload", Threshold: 0.7, EdgeCount: 1, Tracks: sampleTracks()})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if a.TrackCount != 2 {
		t.Errorf("TrackCount = %d, want 2", a.TrackCount)
	}
	if a.Name != "2 tracks" {
		t.Errorf("Name = %q, want %q", a.Name, "2 tracks")
	}
	if math.Abs(a.Summary.Average.Valence-0.6) > 1e-12 {
		t.Errorf("average valence = %v, want 0.6", a.Summary.Average.Valence)
	}
	if got := store.tracks["a"].Features.Energy; got != 0 {
		t.Errorf("stored NaN energy = %v, want 0", got)
	}
	if got := store.tracks["b"].Features.Energy; got != 1 {
		t.Errorf("stored energy = %v, want 1", got)
	}
	if links := store.links[a.ID]; len(links) != 2 || links[0] != "a" || links[1] != "b" {
		t.Errorf("links = %v, want [a b]", links)
	}
}

func TestSaveErrors(t *testing.T) {
	ctx := context.Background()

	_, err := New(newMemStore()).Save(ctx, Record{Tracks: []tracks.Track{{Name: "no id"}}})
	if !errors.Is(err, ErrNoTracks) {
		t.Errorf("Save(no IDs) error = %v, want ErrNoTracks", err)
	}

	failing := newMemStore()
	failing.failWith = errors.New("boom")
	_, err = New(failing).Save(ctx, Record{Tracks: sampleTracks()})
	if err == nil {
		t.Error("Save() with failing store returned nil error")
	}
}

func TestGetOwnership(t *testing.T) {
	svc := New(newMemStore())
	ctx := context.Background()

	a, err := svc.Save(ctx, Record{UserID: "owner", Name: " mine ", Tracks: sampleTracks()})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if a.Name != "mine" {
		t.Errorf("Name = %q, want trimmed %q", a.Name, "mine")
	}

	tests := []struct {
		name    string
		userID  string
		id      string
		wantErr error
	}{
		{"owner", "owner", a.ID.String(), nil},
		{"other user", "intruder", a.ID.String(), db.ErrNotFound},
		{"unknown", "owner", uuid.NewString(), db.ErrNotFound},
		{"malformed", "owner", "not-a-uuid", ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Get(ctx, tt.userID, tt.id)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Get() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Get() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTracksAndDelete(t *testing.T) {
	svc := New(newMemStore())
	ctx := context.Background()

	a, err := svc.Save(ctx, Record{UserID: "u", Tracks: sampleTracks()})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	list, err := svc.Tracks(ctx, "u", a.ID.String())
	if err != nil {
		t.Fatalf("Tracks() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("Tracks() = %+v", list)
	}

	if err := svc.Delete(ctx, "other", a.ID.String()); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Delete() by other user error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "u", a.ID.String()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	analyses, err := svc.List(ctx, "u", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(analyses) != 0 {
		t.Errorf("List() after delete = %d analyses, want 0", len(analyses))
	}
}

func TestFavorites(t *testing.T) {
	store := newMemStore()
	svc := New(store)
	ctx := context.Background()

	if err := svc.AddFavorite(ctx, "u", tracks.Track{Name: "no id"}); err == nil {
		t.Error("AddFavorite() without ID returned nil error")
	}

	if err := svc.AddFavorite(ctx, "u", tracks.Track{ID: "x", Name: "X", Features: tracks.Features{Valence: 3}}); err != nil {
		t.Fatalf("AddFavorite() error = %v", err)
	}
	favs, err := svc.Favorites(ctx, "u")
	if err != nil {
		t.Fatalf("Favorites() error = %v", err)
	}
	if len(favs) != 1 || favs[0].Track.ID != "x" || favs[0].Track.Features.Valence != 1 {
		t.Errorf("Favorites() = %+v", favs)
	}

	if err := svc.RemoveFavorite(ctx, "u", "x"); err != nil {
		t.Fatalf("RemoveFavorite() error = %v", err)
	}
	if err := svc.RemoveFavorite(ctx, "u", "x"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("second RemoveFavorite() error = %v, want ErrNotFound", err)
	}
}

func TestRememberUser(t *testing.T) {
	store := newMemStore()
	svc := New(store)

	if err := svc.RememberUser(context.Background(), "u1", "Ana"); err != nil {
		t.Fatalf("RememberUser() error = %v", err)
	}
	if store.users["u1"] != "Ana" {
		t.Errorf("users = %v", store.users)
	}
}
