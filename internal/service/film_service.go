package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"film-catalog-service/internal/cache"
	"film-catalog-service/internal/metrics"
	"film-catalog-service/internal/models"
	"film-catalog-service/internal/repository"
)

// Cache key patterns touched by catalog or like changes.
const (
	filmDetailKey    = "film:detail:%d"
	popularFilmsKey  = "films:popular:%d:%s:%s"
	filmKeysPattern  = "film:*"
	filmsKeysPattern = "films:*"
)

// FilmService is the catalog core: CRUD pass-throughs, assembly, ranking,
// recommendations, search and director views.
type FilmService struct {
	stores   repository.Stores
	strategy RecommendationStrategy
	cache    *cache.Cache
}

// NewFilmService creates a new FilmService. c may be nil.
func NewFilmService(stores repository.Stores, strategy RecommendationStrategy, c *cache.Cache) *FilmService {
	if strategy == nil {
		strategy = LargestSetStrategy{}
	}
	return &FilmService{stores: stores, strategy: strategy, cache: c}
}

// Strategy returns the configured recommendation strategy.
func (s *FilmService) Strategy() RecommendationStrategy {
	return s.strategy
}

func observe(op string, start time.Time, err *error) {
	metrics.ObserveOperation(op, outcome(*err), start)
}

func (s *FilmService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, filmKeysPattern, filmsKeysPattern)
}

// ---- films ----

// CreateFilm validates and stores a new film with its associations.
func (s *FilmService) CreateFilm(ctx context.Context, film models.Film) (_ models.Film, err error) {
	defer observe("create_film", time.Now(), &err)

	if err := invalidStruct(film); err != nil {
		return models.Film{}, err
	}
	resolved, err := s.resolveRelations(ctx, film)
	if err != nil {
		return models.Film{}, err
	}

	created, err := s.stores.Films.Create(ctx, resolved)
	if err != nil {
		return models.Film{}, storeErr("create film", err)
	}
	s.invalidate(ctx)

	slog.Info("film created", "id", created.ID, "name", created.Name)
	return Assemble(created, resolved.Genres, resolved.Directors, resolved.Mpa), nil
}

// UpdateFilm replaces the film's fields and all of its associations.
func (s *FilmService) UpdateFilm(ctx context.Context, film models.Film) (_ models.Film, err error) {
	defer observe("update_film", time.Now(), &err)

	if err := invalidStruct(film); err != nil {
		return models.Film{}, err
	}
	if _, err := s.stores.Films.Get(ctx, film.ID); err != nil {
		return models.Film{}, lookupErr("film", film.ID, err)
	}
	resolved, err := s.resolveRelations(ctx, film)
	if err != nil {
		return models.Film{}, err
	}

	updated, err := s.stores.Films.Update(ctx, resolved)
	if err != nil {
		return models.Film{}, lookupErr("film", film.ID, err)
	}
	s.invalidate(ctx)

	slog.Info("film updated", "id", updated.ID)
	return Assemble(updated, resolved.Genres, resolved.Directors, resolved.Mpa), nil
}

// GetFilm returns one assembled film.
func (s *FilmService) GetFilm(ctx context.Context, id int) (_ models.Film, err error) {
	defer observe("get_film", time.Now(), &err)

	key := fmt.Sprintf(filmDetailKey, id)
	var cached models.Film
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	gen := s.cache.Generation(ctx)
	films, err := s.loadByIDs(ctx, []int{id})
	if err != nil {
		return models.Film{}, err
	}
	if len(films) == 0 {
		return models.Film{}, &NotFoundError{Entity: "film", ID: id}
	}

	s.cache.SetJSON(ctx, key, films[0], gen)
	return films[0], nil
}

// ListFilms returns the whole catalog ordered by id.
func (s *FilmService) ListFilms(ctx context.Context) (_ []models.Film, err error) {
	defer observe("list_films", time.Now(), &err)

	return s.loadAll(ctx)
}

// DeleteFilm removes a film. Its relations and likes go with it.
func (s *FilmService) DeleteFilm(ctx context.Context, id int) (err error) {
	defer observe("delete_film", time.Now(), &err)

	deleted, err := s.stores.Films.Delete(ctx, id)
	if err != nil {
		return storeErr("delete film", err)
	}
	if !deleted {
		return &NotFoundError{Entity: "film", ID: id}
	}
	s.invalidate(ctx)

	slog.Info("film deleted", "id", id)
	return nil
}

// resolveRelations checks every referenced genre, director and mpa exists and
// fills in their names. Genre and director ids are de-duplicated; directors
// keep the position of their first occurrence.
func (s *FilmService) resolveRelations(ctx context.Context, film models.Film) (models.Film, error) {
	out := film

	if film.Mpa != nil {
		m, err := s.stores.Mpa.Get(ctx, film.Mpa.ID)
		if err != nil {
			return models.Film{}, lookupErr("mpa", film.Mpa.ID, err)
		}
		out.Mpa = &m
	}

	seenGenres := make(map[int]bool, len(film.Genres))
	out.Genres = make([]models.Genre, 0, len(film.Genres))
	for _, g := range film.Genres {
		if seenGenres[g.ID] {
			continue
		}
		seenGenres[g.ID] = true
		genre, err := s.stores.Genres.Get(ctx, g.ID)
		if err != nil {
			return models.Film{}, lookupErr("genre", g.ID, err)
		}
		out.Genres = append(out.Genres, genre)
	}

	seenDirectors := make(map[int]bool, len(film.Directors))
	out.Directors = make([]models.Director, 0, len(film.Directors))
	for _, d := range film.Directors {
		if seenDirectors[d.ID] {
			continue
		}
		seenDirectors[d.ID] = true
		director, err := s.stores.Directors.Get(ctx, d.ID)
		if err != nil {
			return models.Film{}, lookupErr("director", d.ID, err)
		}
		out.Directors = append(out.Directors, director)
	}

	return out, nil
}

// assembleBatch merges a snapshot batch into complete films.
func assembleBatch(b repository.FilmBatch) []models.Film {
	return AssembleMany(b.Films, b.Genres, b.Directors, b.Mpa)
}

// loadAll returns the whole catalog, assembled from one store snapshot.
func (s *FilmService) loadAll(ctx context.Context) ([]models.Film, error) {
	b, err := s.stores.Films.LoadAll(ctx)
	if err != nil {
		return nil, storeErr("load films", err)
	}
	return assembleBatch(b), nil
}

// loadByIDs returns the films that still exist among ids, ordered by id.
func (s *FilmService) loadByIDs(ctx context.Context, ids []int) ([]models.Film, error) {
	if len(ids) == 0 {
		return []models.Film{}, nil
	}
	b, err := s.stores.Films.LoadByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("load films", err)
	}
	return assembleBatch(b), nil
}

// catalogWithLikes loads the assembled catalog and a like snapshot concurrently.
func (s *FilmService) catalogWithLikes(ctx context.Context) ([]models.Film, models.LikeMatrix, error) {
	var (
		films []models.Film
		likes models.LikeMatrix
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		films, err = s.loadAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		likes, err = s.stores.Likes.Snapshot(gctx)
		return storeErr("snapshot likes", err)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return films, likes, nil
}

// ---- directors ----

func (s *FilmService) CreateDirector(ctx context.Context, d models.Director) (_ models.Director, err error) {
	defer observe("create_director", time.Now(), &err)

	if err := invalidStruct(d); err != nil {
		return models.Director{}, err
	}
	created, err := s.stores.Directors.Create(ctx, d)
	if err != nil {
		return models.Director{}, storeErr("create director", err)
	}
	return created, nil
}

func (s *FilmService) UpdateDirector(ctx context.Context, d models.Director) (_ models.Director, err error) {
	defer observe("update_director", time.Now(), &err)

	if err := invalidStruct(d); err != nil {
		return models.Director{}, err
	}
	updated, err := s.stores.Directors.Update(ctx, d)
	if err != nil {
		return models.Director{}, lookupErr("director", d.ID, err)
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *FilmService) GetDirector(ctx context.Context, id int) (_ models.Director, err error) {
	defer observe("get_director", time.Now(), &err)

	d, err := s.stores.Directors.Get(ctx, id)
	if err != nil {
		return models.Director{}, lookupErr("director", id, err)
	}
	return d, nil
}

func (s *FilmService) ListDirectors(ctx context.Context) (_ []models.Director, err error) {
	defer observe("list_directors", time.Now(), &err)

	directors, err := s.stores.Directors.All(ctx)
	if err != nil {
		return nil, storeErr("list directors", err)
	}
	return directors, nil
}

func (s *FilmService) DeleteDirector(ctx context.Context, id int) (err error) {
	defer observe("delete_director", time.Now(), &err)

	deleted, err := s.stores.Directors.Delete(ctx, id)
	if err != nil {
		return storeErr("delete director", err)
	}
	if !deleted {
		return &NotFoundError{Entity: "director", ID: id}
	}
	s.invalidate(ctx)
	return nil
}

// ---- reference data ----

func (s *FilmService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	genres, err := s.stores.Genres.All(ctx)
	if err != nil {
		return nil, storeErr("list genres", err)
	}
	return genres, nil
}

func (s *FilmService) GetGenre(ctx context.Context, id int) (models.Genre, error) {
	g, err := s.stores.Genres.Get(ctx, id)
	if err != nil {
		return models.Genre{}, lookupErr("genre", id, err)
	}
	return g, nil
}

func (s *FilmService) ListMpa(ctx context.Context) ([]models.Mpa, error) {
	all, err := s.stores.Mpa.All(ctx)
	if err != nil {
		return nil, storeErr("list mpa", err)
	}
	return all, nil
}

func (s *FilmService) GetMpa(ctx context.Context, id int) (models.Mpa, error) {
	m, err := s.stores.Mpa.Get(ctx, id)
	if err != nil {
		return models.Mpa{}, lookupErr("mpa", id, err)
	}
	return m, nil
}

// ---- users ----

func (s *FilmService) CreateUser(ctx context.Context, u models.User) (_ models.User, err error) {
	defer observe("create_user", time.Now(), &err)

	if err := invalidStruct(u); err != nil {
		return models.User{}, err
	}
	if u.Name == "" {
		u.Name = u.Login
	}
	created, err := s.stores.Users.Create(ctx, u)
	if err != nil {
		return models.User{}, storeErr("create user", err)
	}
	return created, nil
}

func (s *FilmService) GetUser(ctx context.Context, id int) (models.User, error) {
	u, err := s.stores.Users.Get(ctx, id)
	if err != nil {
		return models.User{}, lookupErr("user", id, err)
	}
	return u, nil
}
