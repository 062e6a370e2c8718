package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// User represents a Spotify user profile.
type User struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Analysis is one recorded mood-space run over a set of tracks.
// UserID is empty for analyses made without a Spotify login.
type Analysis struct {
	ID         uuid.UUID      `json:"id"`
	UserID     string         `json:"user_id,omitempty"`
	Name       string         `json:"name"`
	Source     string         `json:"source,omitempty"` // e.g. "liked", "playlist:<id>", "upload"
	Threshold  float64        `json:"threshold"`
	TrackCount int            `json:"track_count"`
	EdgeCount  int            `json:"edge_count"`
	Summary    tracks.Summary `json:"summary"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Favorite is a track a user marked.
type Favorite struct {
	Track     tracks.Track `json:"track"`
	CreatedAt time.Time    `json:"created_at"`
}
