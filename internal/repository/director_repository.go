package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"film-catalog-service/internal/models"
)

// DirectorRepository handles database operations for directors.
type DirectorRepository struct {
	db *sql.DB
}

func (r *DirectorRepository) Create(ctx context.Context, d models.Director) (models.Director, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO directors (name) VALUES ($1)
		RETURNING id
	`, d.Name).Scan(&d.ID)
	if err != nil {
		return models.Director{}, fmt.Errorf("create director: %w", err)
	}
	return d, nil
}

func (r *DirectorRepository) Get(ctx context.Context, id int) (models.Director, error) {
	var d models.Director
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM directors WHERE id = $1`, id).Scan(&d.ID, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Director{}, ErrNotFound
	}
	if err != nil {
		return models.Director{}, fmt.Errorf("get director %d: %w", id, err)
	}
	return d, nil
}

func (r *DirectorRepository) All(ctx context.Context) ([]models.Director, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM directors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list directors: %w", err)
	}
	defer rows.Close()

	directors := make([]models.Director, 0)
	for rows.Next() {
		var d models.Director
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan director: %w", err)
		}
		directors = append(directors, d)
	}
	return directors, rows.Err()
}

func (r *DirectorRepository) Update(ctx context.Context, d models.Director) (models.Director, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE directors SET name = $1 WHERE id = $2`, d.Name, d.ID)
	if err != nil {
		return models.Director{}, fmt.Errorf("update director %d: %w", d.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Director{}, ErrNotFound
	}
	return d, nil
}

func (r *DirectorRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM directors WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete director %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete director %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *DirectorRepository) FilmIDs(ctx context.Context, directorID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT film_id FROM film_directors WHERE director_id = $1 ORDER BY film_id
	`, directorID)
	if err != nil {
		return nil, fmt.Errorf("query director films: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan director film: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
