package repository

import (
	"context"
	"database/sql"
	"fmt"

	"film-catalog-service/internal/models"
)

// LikeRepository stores the likes relation.
type LikeRepository struct {
	db *sql.DB
}

func (r *LikeRepository) Add(ctx context.Context, filmID, userID int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO likes (film_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, filmID, userID)
	if err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

func (r *LikeRepository) Remove(ctx context.Context, filmID, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE film_id = $1 AND user_id = $2`, filmID, userID)
	if err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}

func (r *LikeRepository) Snapshot(ctx context.Context) (models.LikeMatrix, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, film_id FROM likes`)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	likes := make(models.LikeMatrix)
	for rows.Next() {
		var userID, filmID int
		if err := rows.Scan(&userID, &filmID); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes.Add(userID, filmID)
	}
	return likes, rows.Err()
}
