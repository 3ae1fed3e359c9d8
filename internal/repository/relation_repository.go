package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"film-catalog-service/internal/models"
)

// FilmGenreRepository reads and writes the film_genres relation.
type FilmGenreRepository struct {
	db *sql.DB
}

func (r *FilmGenreRepository) GetFor(ctx context.Context, filmID int) ([]models.Genre, error) {
	m, err := r.GetForMany(ctx, []int{filmID})
	if err != nil {
		return nil, err
	}
	return append([]models.Genre{}, m[filmID]...), nil
}

func (r *FilmGenreRepository) GetForMany(ctx context.Context, filmIDs []int) (map[int][]models.Genre, error) {
	return genresForMany(ctx, r.db, filmIDs)
}

func genresForMany(ctx context.Context, q dbtx, filmIDs []int) (map[int][]models.Genre, error) {
	out := make(map[int][]models.Genre)
	if len(filmIDs) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT fg.film_id, g.id, g.name
		FROM film_genres fg
		INNER JOIN genres g ON g.id = fg.genre_id
		WHERE fg.film_id = ANY($1)
		ORDER BY fg.film_id, g.id
	`, pq.Array(filmIDs))
	if err != nil {
		return nil, fmt.Errorf("query film genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var filmID int
		var g models.Genre
		if err := rows.Scan(&filmID, &g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan film genre: %w", err)
		}
		out[filmID] = append(out[filmID], g)
	}
	return out, rows.Err()
}

func (r *FilmGenreRepository) ReplaceFor(ctx context.Context, filmID int, values []models.Genre) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return replaceGenres(ctx, tx, filmID, values)
	})
}

func (r *FilmGenreRepository) DeleteFor(ctx context.Context, filmID int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM film_genres WHERE film_id = $1`, filmID); err != nil {
		return fmt.Errorf("clear film genres: %w", err)
	}
	return nil
}

func replaceGenres(ctx context.Context, q dbtx, filmID int, genres []models.Genre) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM film_genres WHERE film_id = $1`, filmID); err != nil {
		return fmt.Errorf("clear film genres: %w", err)
	}
	for _, g := range genres {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO film_genres (film_id, genre_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, filmID, g.ID); err != nil {
			return fmt.Errorf("link film genre: %w", err)
		}
	}
	return nil
}

// FilmDirectorRepository reads and writes the film_directors relation.
// The position column preserves credit order.
type FilmDirectorRepository struct {
	db *sql.DB
}

func (r *FilmDirectorRepository) GetFor(ctx context.Context, filmID int) ([]models.Director, error) {
	m, err := r.GetForMany(ctx, []int{filmID})
	if err != nil {
		return nil, err
	}
	return append([]models.Director{}, m[filmID]...), nil
}

func (r *FilmDirectorRepository) GetForMany(ctx context.Context, filmIDs []int) (map[int][]models.Director, error) {
	return directorsForMany(ctx, r.db, filmIDs)
}

func directorsForMany(ctx context.Context, q dbtx, filmIDs []int) (map[int][]models.Director, error) {
	out := make(map[int][]models.Director)
	if len(filmIDs) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT fd.film_id, d.id, d.name
		FROM film_directors fd
		INNER JOIN directors d ON d.id = fd.director_id
		WHERE fd.film_id = ANY($1)
		ORDER BY fd.film_id, fd.position
	`, pq.Array(filmIDs))
	if err != nil {
		return nil, fmt.Errorf("query film directors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var filmID int
		var d models.Director
		if err := rows.Scan(&filmID, &d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan film director: %w", err)
		}
		out[filmID] = append(out[filmID], d)
	}
	return out, rows.Err()
}

func (r *FilmDirectorRepository) ReplaceFor(ctx context.Context, filmID int, values []models.Director) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return replaceDirectors(ctx, tx, filmID, values)
	})
}

func (r *FilmDirectorRepository) DeleteFor(ctx context.Context, filmID int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM film_directors WHERE film_id = $1`, filmID); err != nil {
		return fmt.Errorf("clear film directors: %w", err)
	}
	return nil
}

func replaceDirectors(ctx context.Context, q dbtx, filmID int, directors []models.Director) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM film_directors WHERE film_id = $1`, filmID); err != nil {
		return fmt.Errorf("clear film directors: %w", err)
	}
	for pos, d := range directors {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO film_directors (film_id, director_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, filmID, d.ID, pos); err != nil {
			return fmt.Errorf("link film director: %w", err)
		}
	}
	return nil
}

// FilmMpaRepository reads and writes the single-valued film_mpas relation.
type FilmMpaRepository struct {
	db *sql.DB
}

func (r *FilmMpaRepository) GetFor(ctx context.Context, filmID int) ([]models.Mpa, error) {
	m, err := r.GetForMany(ctx, []int{filmID})
	if err != nil {
		return nil, err
	}
	return m[filmID], nil
}

func (r *FilmMpaRepository) GetForMany(ctx context.Context, filmIDs []int) (map[int][]models.Mpa, error) {
	return mpaForMany(ctx, r.db, filmIDs)
}

func mpaForMany(ctx context.Context, q dbtx, filmIDs []int) (map[int][]models.Mpa, error) {
	out := make(map[int][]models.Mpa)
	if len(filmIDs) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT fm.film_id, m.id, m.name
		FROM film_mpas fm
		INNER JOIN mpas m ON m.id = fm.mpa_id
		WHERE fm.film_id = ANY($1)
	`, pq.Array(filmIDs))
	if err != nil {
		return nil, fmt.Errorf("query film mpa: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var filmID int
		var m models.Mpa
		if err := rows.Scan(&filmID, &m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan film mpa: %w", err)
		}
		out[filmID] = []models.Mpa{m}
	}
	return out, rows.Err()
}

func (r *FilmMpaRepository) ReplaceFor(ctx context.Context, filmID int, values []models.Mpa) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return replaceMpa(ctx, tx, filmID, values)
	})
}

func (r *FilmMpaRepository) DeleteFor(ctx context.Context, filmID int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM film_mpas WHERE film_id = $1`, filmID); err != nil {
		return fmt.Errorf("clear film mpa: %w", err)
	}
	return nil
}

func replaceMpa(ctx context.Context, q dbtx, filmID int, values []models.Mpa) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM film_mpas WHERE film_id = $1`, filmID); err != nil {
		return fmt.Errorf("clear film mpa: %w", err)
	}
	if len(values) == 0 {
		return nil
	}
	if _, err := q.ExecContext(ctx, `
		INSERT INTO film_mpas (film_id, mpa_id) VALUES ($1, $2)
	`, filmID, values[0].ID); err != nil {
		return fmt.Errorf("link film mpa: %w", err)
	}
	return nil
}
