package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"film-catalog-service/internal/models"
)

// GenreRepository serves the seeded genres table.
type GenreRepository struct {
	db *sql.DB
}

func (r *GenreRepository) Get(ctx context.Context, id int) (models.Genre, error) {
	var g models.Genre
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE id = $1`, id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Genre{}, ErrNotFound
	}
	if err != nil {
		return models.Genre{}, fmt.Errorf("get genre %d: %w", id, err)
	}
	return g, nil
}

func (r *GenreRepository) All(ctx context.Context) ([]models.Genre, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	genres := make([]models.Genre, 0)
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// MpaRepository serves the seeded mpas table.
type MpaRepository struct {
	db *sql.DB
}

func (r *MpaRepository) Get(ctx context.Context, id int) (models.Mpa, error) {
	var m models.Mpa
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM mpas WHERE id = $1`, id).Scan(&m.ID, &m.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Mpa{}, ErrNotFound
	}
	if err != nil {
		return models.Mpa{}, fmt.Errorf("get mpa %d: %w", id, err)
	}
	return m, nil
}

func (r *MpaRepository) All(ctx context.Context) ([]models.Mpa, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM mpas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list mpa: %w", err)
	}
	defer rows.Close()

	out := make([]models.Mpa, 0)
	for rows.Next() {
		var m models.Mpa
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan mpa: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
