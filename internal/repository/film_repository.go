package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"film-catalog-service/internal/models"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// NewPostgres returns the PostgreSQL-backed stores sharing one pool.
func NewPostgres(db *sql.DB) Stores {
	return Stores{
		Films:         NewFilmRepository(db),
		FilmGenres:    &FilmGenreRepository{db: db},
		FilmDirectors: &FilmDirectorRepository{db: db},
		FilmMpa:       &FilmMpaRepository{db: db},
		Likes:         &LikeRepository{db: db},
		Genres:        &GenreRepository{db: db},
		Mpa:           &MpaRepository{db: db},
		Directors:     &DirectorRepository{db: db},
		Users:         &UserRepository{db: db},
	}
}

// FilmRepository handles database operations for films.
type FilmRepository struct {
	db *sql.DB
}

// NewFilmRepository creates a new FilmRepository.
func NewFilmRepository(db *sql.DB) *FilmRepository {
	return &FilmRepository{db: db}
}

const filmColumns = `id, name, COALESCE(description, ''), release_date, duration, rate`

func scanFilm(scan func(dest ...interface{}) error) (models.Film, error) {
	var f models.Film
	var release sql.NullTime
	if err := scan(&f.ID, &f.Name, &f.Description, &release, &f.Duration, &f.Rate); err != nil {
		return models.Film{}, err
	}
	if release.Valid {
		f.ReleaseDate = models.Date{Time: release.Time.UTC()}
	}
	return f, nil
}

func scanFilms(rows *sql.Rows) ([]models.Film, error) {
	defer rows.Close()

	films := make([]models.Film, 0)
	for rows.Next() {
		f, err := scanFilm(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		films = append(films, f)
	}
	return films, rows.Err()
}

func nullableDate(d models.Date) interface{} {
	if d.IsZero() {
		return nil
	}
	return d.Format(models.DateLayout)
}

// Create inserts the film and its associations in one transaction.
func (r *FilmRepository) Create(ctx context.Context, film models.Film) (models.Film, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO films (name, description, release_date, duration, rate, updated_at)
			VALUES ($1, $2, $3::date, $4, $5, $6)
			RETURNING id
		`, film.Name, film.Description, nullableDate(film.ReleaseDate),
			film.Duration, film.Rate, time.Now()).Scan(&film.ID); err != nil {
			return fmt.Errorf("insert film: %w", err)
		}
		return replaceAllRelations(ctx, tx, film)
	})
	if err != nil {
		return models.Film{}, err
	}
	return film, nil
}

// Get returns the film's scalar fields.
func (r *FilmRepository) Get(ctx context.Context, id int) (models.Film, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+filmColumns+` FROM films WHERE id = $1`, id)
	f, err := scanFilm(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Film{}, ErrNotFound
	}
	if err != nil {
		return models.Film{}, fmt.Errorf("get film %d: %w", id, err)
	}
	return f, nil
}

// GetAll returns every film ordered by id.
func (r *FilmRepository) GetAll(ctx context.Context) ([]models.Film, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+filmColumns+` FROM films ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	return scanFilms(rows)
}

// GetByIDs returns the films that still exist among ids, ordered by id.
func (r *FilmRepository) GetByIDs(ctx context.Context, ids []int) ([]models.Film, error) {
	if len(ids) == 0 {
		return []models.Film{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+filmColumns+` FROM films WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("films by ids: %w", err)
	}
	return scanFilms(rows)
}

// LoadAll reads every film and its relations in one read-only snapshot.
func (r *FilmRepository) LoadAll(ctx context.Context) (FilmBatch, error) {
	var b FilmBatch
	err := withSnapshot(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+filmColumns+` FROM films ORDER BY id`)
		if err != nil {
			return fmt.Errorf("list films: %w", err)
		}
		films, err := scanFilms(rows)
		if err != nil {
			return err
		}
		b, err = loadRelations(ctx, tx, films)
		return err
	})
	return b, err
}

// LoadByIDs reads the films that exist among ids and their relations in one
// read-only snapshot.
func (r *FilmRepository) LoadByIDs(ctx context.Context, ids []int) (FilmBatch, error) {
	if len(ids) == 0 {
		return loadRelations(ctx, r.db, nil)
	}
	var b FilmBatch
	err := withSnapshot(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT `+filmColumns+` FROM films WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
		if err != nil {
			return fmt.Errorf("films by ids: %w", err)
		}
		films, err := scanFilms(rows)
		if err != nil {
			return err
		}
		b, err = loadRelations(ctx, tx, films)
		return err
	})
	return b, err
}

func loadRelations(ctx context.Context, q dbtx, films []models.Film) (FilmBatch, error) {
	b := FilmBatch{Films: films}
	if b.Films == nil {
		b.Films = []models.Film{}
	}
	ids := make([]int, 0, len(films))
	for _, f := range films {
		ids = append(ids, f.ID)
	}

	var err error
	if b.Genres, err = genresForMany(ctx, q, ids); err != nil {
		return FilmBatch{}, err
	}
	if b.Directors, err = directorsForMany(ctx, q, ids); err != nil {
		return FilmBatch{}, err
	}
	if b.Mpa, err = mpaForMany(ctx, q, ids); err != nil {
		return FilmBatch{}, err
	}
	return b, nil
}

// Update replaces the film row and re-creates all of its associations.
func (r *FilmRepository) Update(ctx context.Context, film models.Film) (models.Film, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE films SET name = $1, description = $2, release_date = $3::date,
				duration = $4, rate = $5, updated_at = $6
			WHERE id = $7
		`, film.Name, film.Description, nullableDate(film.ReleaseDate),
			film.Duration, film.Rate, time.Now(), film.ID)
		if err != nil {
			return fmt.Errorf("update film %d: %w", film.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return replaceAllRelations(ctx, tx, film)
	})
	if err != nil {
		return models.Film{}, err
	}
	return film, nil
}

// Delete removes the film; relations and likes cascade.
func (r *FilmRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM films WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete film %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete film %d: %w", id, err)
	}
	return n > 0, nil
}

func replaceAllRelations(ctx context.Context, q dbtx, film models.Film) error {
	if err := replaceGenres(ctx, q, film.ID, film.Genres); err != nil {
		return err
	}
	if err := replaceDirectors(ctx, q, film.ID, film.Directors); err != nil {
		return err
	}
	var mpa []models.Mpa
	if film.Mpa != nil {
		mpa = []models.Mpa{*film.Mpa}
	}
	return replaceMpa(ctx, q, film.ID, mpa)
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	return runTx(ctx, db, nil, fn)
}

// withSnapshot runs fn in a read-only REPEATABLE READ transaction so every
// statement sees the same committed state.
func withSnapshot(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	return runTx(ctx, db, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func runTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
