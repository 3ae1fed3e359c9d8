package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"film-catalog-service/internal/config"
	"film-catalog-service/internal/models"
)

// NewPostgres creates a new PostgreSQL connection, runs migrations and seeds reference data.
func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := seedReferenceData(db); err != nil {
		return nil, fmt.Errorf("failed to seed reference data: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS genres (
			id INTEGER PRIMARY KEY,
			name VARCHAR(100) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS mpas (
			id INTEGER PRIMARY KEY,
			name VARCHAR(20) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS films (
			id SERIAL PRIMARY KEY,
			name VARCHAR(500) NOT NULL,
			description VARCHAR(200) DEFAULT '',
			release_date DATE,
			duration INTEGER NOT NULL,
			rate INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS directors (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			login VARCHAR(100) NOT NULL,
			name VARCHAR(255) DEFAULT '',
			birthday DATE
		)`,
		`CREATE TABLE IF NOT EXISTS film_genres (
			film_id INTEGER REFERENCES films(id) ON DELETE CASCADE,
			genre_id INTEGER REFERENCES genres(id) ON DELETE CASCADE,
			PRIMARY KEY (film_id, genre_id)
		)`,
		`CREATE TABLE IF NOT EXISTS film_directors (
			film_id INTEGER REFERENCES films(id) ON DELETE CASCADE,
			director_id INTEGER REFERENCES directors(id) ON DELETE CASCADE,
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (film_id, director_id)
		)`,
		`CREATE TABLE IF NOT EXISTS film_mpas (
			film_id INTEGER PRIMARY KEY REFERENCES films(id) ON DELETE CASCADE,
			mpa_id INTEGER NOT NULL REFERENCES mpas(id)
		)`,
		`CREATE TABLE IF NOT EXISTS likes (
			film_id INTEGER REFERENCES films(id) ON DELETE CASCADE,
			user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (film_id, user_id)
		)`,
		// Indexes for common query patterns
		`CREATE INDEX IF NOT EXISTS idx_films_release_date ON films(release_date)`,
		`CREATE INDEX IF NOT EXISTS idx_film_directors_director_id ON film_directors(director_id)`,
		`CREATE INDEX IF NOT EXISTS idx_likes_user_id ON likes(user_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}

func seedReferenceData(db *sql.DB) error {
	for _, g := range models.DefaultGenres {
		if _, err := db.Exec(`
			INSERT INTO genres (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
		`, g.ID, g.Name); err != nil {
			return fmt.Errorf("seed genre %q: %w", g.Name, err)
		}
	}
	for _, m := range models.DefaultMpa {
		if _, err := db.Exec(`
			INSERT INTO mpas (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
		`, m.ID, m.Name); err != nil {
			return fmt.Errorf("seed mpa %q: %w", m.Name, err)
		}
	}
	return nil
}
