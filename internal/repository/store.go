package repository

import (
	"context"
	"errors"

	"film-catalog-service/internal/models"
)

// ErrNotFound is returned by single-row lookups when the row does not exist.
var ErrNotFound = errors.New("not found")

// FilmBatch is a set of film rows together with their relation groupings,
// all read from one snapshot. Films are ordered by id; a film without
// genres, directors or mpa is absent from that grouping.
type FilmBatch struct {
	Films     []models.Film
	Genres    map[int][]models.Genre
	Directors map[int][]models.Director
	Mpa       map[int][]models.Mpa
}

// CatalogStore is the durable record of films and their scalar attributes.
// Films returned by Get/GetAll/GetByIDs carry scalar fields only; relations
// are read through the RelationStores. Create and Update persist the film's
// genre, director and mpa associations in the same transaction as the row.
//
// LoadAll and LoadByIDs return rows and relations from a single snapshot, so
// a concurrent Update is seen either entirely or not at all.
type CatalogStore interface {
	Create(ctx context.Context, film models.Film) (models.Film, error)
	Get(ctx context.Context, id int) (models.Film, error)
	GetAll(ctx context.Context) ([]models.Film, error)
	GetByIDs(ctx context.Context, ids []int) ([]models.Film, error)
	LoadAll(ctx context.Context) (FilmBatch, error)
	LoadByIDs(ctx context.Context, ids []int) (FilmBatch, error)
	Update(ctx context.Context, film models.Film) (models.Film, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// RelationStore is a film-keyed many-to-many relation.
// Films without rows are simply absent from GetForMany's result.
type RelationStore[T any] interface {
	GetFor(ctx context.Context, filmID int) ([]T, error)
	GetForMany(ctx context.Context, filmIDs []int) (map[int][]T, error)
	ReplaceFor(ctx context.Context, filmID int, values []T) error
	DeleteFor(ctx context.Context, filmID int) error
}

// LikeStore holds the user-film like relation.
type LikeStore interface {
	Add(ctx context.Context, filmID, userID int) error
	Remove(ctx context.Context, filmID, userID int) error
	// Snapshot returns a copy the caller owns.
	Snapshot(ctx context.Context) (models.LikeMatrix, error)
}

// ReferenceStore serves seeded, read-only enumerations (genres, mpa).
type ReferenceStore[T any] interface {
	Get(ctx context.Context, id int) (T, error)
	All(ctx context.Context) ([]T, error)
}

// DirectorStore manages directors and answers which films a director made.
type DirectorStore interface {
	Create(ctx context.Context, d models.Director) (models.Director, error)
	Get(ctx context.Context, id int) (models.Director, error)
	All(ctx context.Context) ([]models.Director, error)
	Update(ctx context.Context, d models.Director) (models.Director, error)
	Delete(ctx context.Context, id int) (bool, error)
	FilmIDs(ctx context.Context, directorID int) ([]int, error)
}

// UserStore is the slice of user management the catalog depends on.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	Get(ctx context.Context, id int) (models.User, error)
}

// Stores bundles one backend's implementations.
type Stores struct {
	Films         CatalogStore
	FilmGenres    RelationStore[models.Genre]
	FilmDirectors RelationStore[models.Director]
	FilmMpa       RelationStore[models.Mpa]
	Likes         LikeStore
	Genres        ReferenceStore[models.Genre]
	Mpa           ReferenceStore[models.Mpa]
	Directors     DirectorStore
	Users         UserStore
}
