package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/go-spotify-mood-space/internal/tracks"
)

// AnalysisRepository handles analysis history operations.
type AnalysisRepository struct {
	pool *pgxpool.Pool
}

const analysisColumns = `id, user_id, name, source, threshold, track_count, edge_count, summary, created_at`

// Create inserts a new analysis with its tracks in order. The tracks must
// already exist; see TrackRepository.UpsertBatch.
func (r *AnalysisRepository) Create(ctx context.Context, a *Analysis, trackIDs []string) error {
	summary, err := json.Marshal(a.Summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO analyses (id, user_id, name, source, threshold, track_count, edge_count, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err = tx.QueryRow(ctx, query,
		a.ID,
		a.UserID,
		a.Name,
		a.Source,
		a.Threshold,
		a.TrackCount,
		a.EdgeCount,
		summary,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}

	if len(trackIDs) > 0 {
		tracksQuery := `
			INSERT INTO analysis_tracks (analysis_id, position, track_id)
			SELECT $1, t.ord - 1, t.id
			FROM unnest($2::text[]) WITH ORDINALITY AS t(id, ord)
		`
		if _, err := tx.Exec(ctx, tracksQuery, a.ID, trackIDs); err != nil {
			return fmt.Errorf("inserting analysis tracks: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves an analysis by ID.
func (r *AnalysisRepository) Get(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`
	a, err := scanAnalysis(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying analysis: %w", err)
	}
	return &a, nil
}

// ListForUser returns a user's analyses, newest first. limit <= 0 returns all.
func (r *AnalysisRepository) ListForUser(ctx context.Context, userID string, limit int) ([]Analysis, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM analyses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT NULLIF($2, 0)
	`
	if limit < 0 {
		limit = 0
	}
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetTracks retrieves the tracks of an analysis in their recorded order.
func (r *AnalysisRepository) GetTracks(ctx context.Context, id uuid.UUID) ([]tracks.Track, error) {
	query := `
		SELECT ` + trackColumns + `
		FROM tracks t
		JOIN analysis_tracks link ON t.id = link.track_id
		WHERE link.analysis_id = $1
		ORDER BY link.position
	`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying analysis tracks: %w", err)
	}
	return collectTracks(rows)
}

// Delete removes an analysis and its track links.
func (r *AnalysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM analyses WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting analysis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAnalysis(row pgx.Row) (Analysis, error) {
	var a Analysis
	var summary []byte
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&a.Source,
		&a.Threshold,
		&a.TrackCount,
		&a.EdgeCount,
		&summary,
		&a.CreatedAt,
	)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(summary, &a.Summary); err != nil {
		return a, fmt.Errorf("decoding summary: %w", err)
	}
	return a, nil
}
