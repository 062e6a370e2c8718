package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// TrackRepository stores analysed tracks with their feature vectors.
type TrackRepository struct {
	pool *pgxpool.Pool
}

const trackColumns = `t.id, t.name, t.artist, t.acousticness, t.danceability, t.energy,
	t.instrumentalness, t.liveness, t.speechiness, t.valence, t.popularity, t.mood_score`

// UpsertBatch inserts or updates multiple tracks efficiently.
// Tracks without an ID are skipped.
func (r *TrackRepository) UpsertBatch(ctx context.Context, list []tracks.Track) error {
	query := `
		INSERT INTO tracks (id, name, artist, acousticness, danceability, energy,
			instrumentalness, liveness, speechiness, valence, popularity, mood_score, updated_at)
		SELECT *, NOW() FROM unnest($1::text[], $2::text[], $3::text[],
			$4::float8[], $5::float8[], $6::float8[], $7::float8[], $8::float8[],
			$9::float8[], $10::float8[], $11::float8[], $12::float8[])
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			artist = EXCLUDED.artist,
			acousticness = EXCLUDED.acousticness,
			danceability = EXCLUDED.danceability,
			energy = EXCLUDED.energy,
			instrumentalness = EXCLUDED.instrumentalness,
			liveness = EXCLUDED.liveness,
			speechiness = EXCLUDED.speechiness,
			valence = EXCLUDED.valence,
			popularity = EXCLUDED.popularity,
			mood_score = EXCLUDED.mood_score,
			updated_at = NOW()
	`

	// Later duplicates win, and a statement may not touch a row twice.
	seen := make(map[string]int, len(list))
	var rows []tracks.Track
	for _, t := range list {
		if t.ID == "" {
			continue
		}
		if i, ok := seen[t.ID]; ok {
			rows[i] = t
			continue
		}
		seen[t.ID] = len(rows)
		rows = append(rows, t)
	}
	if len(rows) == 0 {
		return nil
	}

	cols := make([][]float64, 9)
	for i := range cols {
		cols[i] = make([]float64, len(rows))
	}
	ids := make([]string, len(rows))
	names := make([]string, len(rows))
	artists := make([]string, len(rows))

	for i, t := range rows {
		f := t.Features
		ids[i] = t.ID
		names[i] = t.Name
		artists[i] = t.Artist
		for c, v := range []float64{f.Acousticness, f.Danceability, f.Energy, f.Instrumentalness,
			f.Liveness, f.Speechiness, f.Valence, f.Popularity, f.MoodScore} {
			cols[c][i] = v
		}
	}

	_, err := r.pool.Exec(ctx, query, ids, names, artists,
		cols[0], cols[1], cols[2], cols[3], cols[4], cols[5], cols[6], cols[7], cols[8])
	if err != nil {
		return fmt.Errorf("batch upserting tracks: %w", err)
	}
	return nil
}

// scanTrack reads trackColumns followed by any extra destinations.
func scanTrack(row pgx.Row, extra ...any) (tracks.Track, error) {
	var t tracks.Track
	f := &t.Features
	dest := append([]any{
		&t.ID, &t.Name, &t.Artist,
		&f.Acousticness, &f.Danceability, &f.Energy, &f.Instrumentalness,
		&f.Liveness, &f.Speechiness, &f.Valence, &f.Popularity, &f.MoodScore,
	}, extra...)
	err := row.Scan(dest...)
	return t, err
}

// collectTracks drains rows produced with trackColumns.
func collectTracks(rows pgx.Rows) ([]tracks.Track, error) {
	defer rows.Close()

	var list []tracks.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning track: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
