package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FavoriteRepository handles favorite track operations.
type FavoriteRepository struct {
	pool *pgxpool.Pool
}

// Add marks a stored track as a favorite. Adding twice is a no-op.
func (r *FavoriteRepository) Add(ctx context.Context, userID, trackID string) error {
	query := `
		INSERT INTO favorites (user_id, track_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, track_id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, userID, trackID); err != nil {
		return fmt.Errorf("adding favorite: %w", err)
	}
	return nil
}

// Remove unmarks a favorite.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, trackID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND track_id = $2`
	result, err := r.pool.Exec(ctx, query, userID, trackID)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a user's favorites, most recent first.
func (r *FavoriteRepository) List(ctx context.Context, userID string) ([]Favorite, error) {
	query := `
		SELECT ` + trackColumns + `, f.created_at
		FROM tracks t
		JOIN favorites f ON t.id = f.track_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC, t.id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer rows.Close()

	var out []Favorite
	for rows.Next() {
		var fav Favorite
		fav.Track, err = scanTrack(rows, &fav.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		out = append(out, fav)
	}
	return out, rows.Err()
}
