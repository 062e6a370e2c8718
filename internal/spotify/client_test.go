package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

func TestConvertTrack(t *testing.T) {
	tests := []struct {
		name           string
		full           spotify.FullTrack
		expectedID     string
		expectedName   string
		expectedArtist string
		expectedPop    float64
	}{
		{
			name: "single artist",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track123",
					Name: "Test Song",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist One"},
					},
				},
				Popularity: 73,
			},
			expectedID:     "track123",
			expectedName:   "Test Song",
			expectedArtist: "Artist One",
			expectedPop:    73,
		},
		{
			name: "multiple artists",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track456",
					Name: "Collab Track",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist A"},
						{Name: "Artist B"},
						{Name: "Artist C"},
					},
				},
			},
			expectedID:     "track456",
			expectedName:   "Collab Track",
			expectedArtist: "Artist A, Artist B, Artist C",
		},
		{
			name: "no artists",
			full: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:      "track000",
					Name:    "Unknown Track",
					Artists: []spotify.SimpleArtist{},
				},
			},
			expectedID:     "track000",
			expectedName:   "Unknown Track",
			expectedArtist: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertTrack(tt.full)

			if got.ID != tt.expectedID {
				t.Errorf("ID = %q, want %q", got.ID, tt.expectedID)
			}
			if got.Name != tt.expectedName {
				t.Errorf("Name = %q, want %q", got.Name, tt.expectedName)
			}
			if got.Artist != tt.expectedArtist {
				t.Errorf("Artist = %q, want %q", got.Artist, tt.expectedArtist)
			}
			if got.Features.Popularity != tt.expectedPop {
				t.Errorf("Popularity = %v, want %v", got.Features.Popularity, tt.expectedPop)
			}
		})
	}
}

func TestBatchChunking(t *testing.T) {
	tests := []struct {
		name          string
		totalTracks   int
		expectedBatch []batch
	}{
		{
			name:          "less than 100",
			totalTracks:   50,
			expectedBatch: []batch{{0, 50}},
		},
		{
			name:          "exactly 100",
			totalTracks:   100,
			expectedBatch: []batch{{0, 100}},
		},
		{
			name:          "more than 100",
			totalTracks:   250,
			expectedBatch: []batch{{0, 100}, {100, 200}, {200, 250}},
		},
		{
			name:          "exactly 200",
			totalTracks:   200,
			expectedBatch: []batch{{0, 100}, {100, 200}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := batches(tt.totalTracks, maxTracksPerRequest)

			if len(got) != len(tt.expectedBatch) {
				t.Errorf("got %d batches, want %d", len(got), len(tt.expectedBatch))
				return
			}

			for i, b := range got {
				if b != tt.expectedBatch[i] {
					t.Errorf("batch %d = {%d, %d}, want {%d, %d}",
						i, b.start, b.end, tt.expectedBatch[i].start, tt.expectedBatch[i].end)
				}
			}
		})
	}
}

// fakeAPI serves the subset of the Web API the client uses.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body any
		switch {
		case strings.HasSuffix(r.URL.Path, "/me/tracks"):
			body = map[string]any{
				"items": []map[string]any{
					{"added_at": "2024-01-15T10:30:00Z", "track": map[string]any{
						"id": "a", "name": "First", "popularity": 50,
						"artists": []map[string]any{{"name": "One"}},
					}},
					{"added_at": "2024-01-14T10:30:00Z", "track": map[string]any{
						"id": "b", "name": "Second", "popularity": 20,
						"artists": []map[string]any{{"name": "Two"}, {"name": "Three"}},
					}},
				},
				"total": 2,
				"next":  "",
			}
		case strings.HasSuffix(r.URL.Path, "/audio-features"):
			body = map[string]any{
				"audio_features": []any{
					map[string]any{"id": "a", "valence": 1, "energy": 1, "danceability": 1, "acousticness": 0.5},
					nil,
				},
			}
		default:
			http.NotFound(w, r)
			return
		}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encoding response: %v", err)
		}
	}))
}

func TestFetchLikedSongsWithFeatures(t *testing.T) {
	srv := fakeAPI(t)
	defer srv.Close()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	api := spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/v1/"))
	c := New(api, logger)

	ctx := context.Background()
	list, err := c.FetchLikedSongs(ctx, 0)
	if err != nil {
		t.Fatalf("FetchLikedSongs() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d tracks, want 2", len(list))
	}
	if list[1].Artist != "Two, Three" || list[0].Features.Popularity != 50 {
		t.Errorf("tracks = %+v", list)
	}

	if err := c.FetchAudioFeatures(ctx, list); err != nil {
		t.Fatalf("FetchAudioFeatures() error = %v", err)
	}
	if list[0].Features.Valence != 1 || list[0].Features.MoodScore != 1 {
		t.Errorf("track a features = %+v", list[0].Features)
	}
	if list[1].Features.Valence != 0 || list[1].Features.MoodScore != 0 {
		t.Errorf("track without features = %+v", list[1].Features)
	}

	if hook.LastEntry() == nil || hook.LastEntry().Data["with_features"] != 1 {
		t.Errorf("missing audio feature log entry, got %+v", hook.LastEntry())
	}
}

func TestFetchLikedSongsLimit(t *testing.T) {
	srv := fakeAPI(t)
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	c := New(spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/v1/")), logger)

	list, err := c.FetchLikedSongs(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchLikedSongs() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != "a" {
		t.Errorf("FetchLikedSongs(limit=1) = %+v", list)
	}
}

func TestFetchAudioFeaturesDuplicateEntries(t *testing.T) {
	srv := fakeAPI(t)
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	c := New(spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/v1/")), logger)

	list := []tracks.Track{{ID: "a"}, {ID: "b"}, {ID: "a"}}
	if err := c.FetchAudioFeatures(context.Background(), list); err != nil {
		t.Fatalf("FetchAudioFeatures() error = %v", err)
	}

	for _, i := range []int{0, 2} {
		if list[i].Features.Valence != 1 || list[i].Features.MoodScore != 1 {
			t.Errorf("copy %d of track a features = %+v, want valence 1 and mood score 1", i, list[i].Features)
		}
	}
	if list[1].Features.Valence != 0 {
		t.Errorf("track b features = %+v, want zero", list[1].Features)
	}
}
