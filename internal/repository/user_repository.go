package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"film-catalog-service/internal/models"
)

// UserRepository handles the users table.
type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, login, name, birthday) VALUES ($1, $2, $3, $4::date)
		RETURNING id
	`, u.Email, u.Login, u.Name, nullableDate(u.Birthday)).Scan(&u.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Get(ctx context.Context, id int) (models.User, error) {
	var u models.User
	var birthday sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, login, COALESCE(name, ''), birthday FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Login, &u.Name, &birthday)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	if birthday.Valid {
		u.Birthday = models.Date{Time: birthday.Time.UTC()}
	}
	return u, nil
}
