package repository

import (
	"context"
	"sort"
	"sync"

	"film-catalog-service/internal/models"
)

// memoryDB keeps every table behind one lock so a film and its relations
// always change together.
type memoryDB struct {
	mu sync.RWMutex

	films         map[int]models.Film
	filmGenres    map[int][]int
	filmDirectors map[int][]int
	filmMpa       map[int]int
	likes         models.LikeMatrix

	genres    map[int]models.Genre
	mpa       map[int]models.Mpa
	directors map[int]models.Director
	users     map[int]models.User

	nextFilmID     int
	nextDirectorID int
	nextUserID     int
}

// NewMemory returns an in-process backend seeded with the reference genres and mpa.
func NewMemory() Stores {
	db := &memoryDB{
		films:          make(map[int]models.Film),
		filmGenres:     make(map[int][]int),
		filmDirectors:  make(map[int][]int),
		filmMpa:        make(map[int]int),
		likes:          make(models.LikeMatrix),
		genres:         make(map[int]models.Genre),
		mpa:            make(map[int]models.Mpa),
		directors:      make(map[int]models.Director),
		users:          make(map[int]models.User),
		nextFilmID:     1,
		nextDirectorID: 1,
		nextUserID:     1,
	}
	for _, g := range models.DefaultGenres {
		db.genres[g.ID] = g
	}
	for _, m := range models.DefaultMpa {
		db.mpa[m.ID] = m
	}

	return Stores{
		Films:         &memoryFilms{db},
		FilmGenres:    &memoryFilmGenres{db},
		FilmDirectors: &memoryFilmDirectors{db},
		FilmMpa:       &memoryFilmMpa{db},
		Likes:         &memoryLikes{db},
		Genres:        &memoryGenres{db},
		Mpa:           &memoryMpa{db},
		Directors:     &memoryDirectors{db},
		Users:         &memoryUsers{db},
	}
}

func scalarOnly(f models.Film) models.Film {
	f.Mpa = nil
	f.Genres = nil
	f.Directors = nil
	return f
}

// setRelations must be called with mu held for writing.
func (db *memoryDB) setRelations(f models.Film) {
	db.setGenres(f.ID, f.Genres)
	db.setDirectors(f.ID, f.Directors)
	if f.Mpa != nil {
		db.filmMpa[f.ID] = f.Mpa.ID
	} else {
		delete(db.filmMpa, f.ID)
	}
}

func (db *memoryDB) setGenres(filmID int, genres []models.Genre) {
	seen := make(map[int]bool, len(genres))
	ids := make([]int, 0, len(genres))
	for _, g := range genres {
		if !seen[g.ID] {
			seen[g.ID] = true
			ids = append(ids, g.ID)
		}
	}
	sort.Ints(ids)
	if len(ids) == 0 {
		delete(db.filmGenres, filmID)
		return
	}
	db.filmGenres[filmID] = ids
}

func (db *memoryDB) setDirectors(filmID int, directors []models.Director) {
	seen := make(map[int]bool, len(directors))
	ids := make([]int, 0, len(directors))
	for _, d := range directors {
		if !seen[d.ID] {
			seen[d.ID] = true
			ids = append(ids, d.ID)
		}
	}
	if len(ids) == 0 {
		delete(db.filmDirectors, filmID)
		return
	}
	db.filmDirectors[filmID] = ids
}

func (db *memoryDB) genresFor(filmID int) []models.Genre {
	out := make([]models.Genre, 0, len(db.filmGenres[filmID]))
	for _, id := range db.filmGenres[filmID] {
		if g, ok := db.genres[id]; ok {
			out = append(out, g)
		}
	}
	return out
}

func (db *memoryDB) directorsFor(filmID int) []models.Director {
	out := make([]models.Director, 0, len(db.filmDirectors[filmID]))
	for _, id := range db.filmDirectors[filmID] {
		if d, ok := db.directors[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

func (db *memoryDB) mpaFor(filmID int) []models.Mpa {
	id, ok := db.filmMpa[filmID]
	if !ok {
		return nil
	}
	m, ok := db.mpa[id]
	if !ok {
		return nil
	}
	return []models.Mpa{m}
}

// ---- films ----

type memoryFilms struct{ db *memoryDB }

func (s *memoryFilms) Create(_ context.Context, film models.Film) (models.Film, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	film.ID = s.db.nextFilmID
	s.db.nextFilmID++
	s.db.films[film.ID] = scalarOnly(film)
	s.db.setRelations(film)
	return scalarOnly(film), nil
}

func (s *memoryFilms) Get(_ context.Context, id int) (models.Film, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	f, ok := s.db.films[id]
	if !ok {
		return models.Film{}, ErrNotFound
	}
	return f, nil
}

func (s *memoryFilms) GetAll(_ context.Context) ([]models.Film, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]models.Film, 0, len(s.db.films))
	for _, f := range s.db.films {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryFilms) GetByIDs(_ context.Context, ids []int) ([]models.Film, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	seen := make(map[int]bool, len(ids))
	out := make([]models.Film, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if f, ok := s.db.films[id]; ok {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryFilms) LoadAll(_ context.Context) (FilmBatch, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	ids := make([]int, 0, len(s.db.films))
	for id := range s.db.films {
		ids = append(ids, id)
	}
	return s.db.batch(ids), nil
}

func (s *memoryFilms) LoadByIDs(_ context.Context, ids []int) (FilmBatch, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.db.batch(ids), nil
}

// batch must be called with mu held.
func (db *memoryDB) batch(ids []int) FilmBatch {
	b := FilmBatch{
		Films:     make([]models.Film, 0, len(ids)),
		Genres:    make(map[int][]models.Genre),
		Directors: make(map[int][]models.Director),
		Mpa:       make(map[int][]models.Mpa),
	}
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		f, ok := db.films[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		b.Films = append(b.Films, f)
		if g := db.genresFor(id); len(g) > 0 {
			b.Genres[id] = g
		}
		if d := db.directorsFor(id); len(d) > 0 {
			b.Directors[id] = d
		}
		if m := db.mpaFor(id); len(m) > 0 {
			b.Mpa[id] = m
		}
	}
	sort.Slice(b.Films, func(i, j int) bool { return b.Films[i].ID < b.Films[j].ID })
	return b
}

func (s *memoryFilms) Update(_ context.Context, film models.Film) (models.Film, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.films[film.ID]; !ok {
		return models.Film{}, ErrNotFound
	}
	s.db.films[film.ID] = scalarOnly(film)
	s.db.setRelations(film)
	return scalarOnly(film), nil
}

func (s *memoryFilms) Delete(_ context.Context, id int) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.films[id]; !ok {
		return false, nil
	}
	delete(s.db.films, id)
	delete(s.db.filmGenres, id)
	delete(s.db.filmDirectors, id)
	delete(s.db.filmMpa, id)
	for _, userID := range s.db.likes.Users() {
		s.db.likes.Remove(userID, id)
	}
	return true, nil
}

// ---- relations ----

type memoryFilmGenres struct{ db *memoryDB }

func (s *memoryFilmGenres) GetFor(_ context.Context, filmID int) ([]models.Genre, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.db.genresFor(filmID), nil
}

func (s *memoryFilmGenres) GetForMany(_ context.Context, filmIDs []int) (map[int][]models.Genre, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make(map[int][]models.Genre)
	for _, id := range filmIDs {
		if _, ok := s.db.filmGenres[id]; ok {
			out[id] = s.db.genresFor(id)
		}
	}
	return out, nil
}

func (s *memoryFilmGenres) ReplaceFor(_ context.Context, filmID int, values []models.Genre) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.setGenres(filmID, values)
	return nil
}

func (s *memoryFilmGenres) DeleteFor(_ context.Context, filmID int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.filmGenres, filmID)
	return nil
}

type memoryFilmDirectors struct{ db *memoryDB }

func (s *memoryFilmDirectors) GetFor(_ context.Context, filmID int) ([]models.Director, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.db.directorsFor(filmID), nil
}

func (s *memoryFilmDirectors) GetForMany(_ context.Context, filmIDs []int) (map[int][]models.Director, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make(map[int][]models.Director)
	for _, id := range filmIDs {
		if _, ok := s.db.filmDirectors[id]; ok {
			out[id] = s.db.directorsFor(id)
		}
	}
	return out, nil
}

func (s *memoryFilmDirectors) ReplaceFor(_ context.Context, filmID int, values []models.Director) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.setDirectors(filmID, values)
	return nil
}

func (s *memoryFilmDirectors) DeleteFor(_ context.Context, filmID int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.filmDirectors, filmID)
	return nil
}

type memoryFilmMpa struct{ db *memoryDB }

func (s *memoryFilmMpa) GetFor(_ context.Context, filmID int) ([]models.Mpa, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.db.mpaFor(filmID), nil
}

func (s *memoryFilmMpa) GetForMany(_ context.Context, filmIDs []int) (map[int][]models.Mpa, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make(map[int][]models.Mpa)
	for _, id := range filmIDs {
		if m := s.db.mpaFor(id); len(m) > 0 {
			out[id] = m
		}
	}
	return out, nil
}

func (s *memoryFilmMpa) ReplaceFor(_ context.Context, filmID int, values []models.Mpa) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if len(values) == 0 {
		delete(s.db.filmMpa, filmID)
		return nil
	}
	s.db.filmMpa[filmID] = values[0].ID
	return nil
}

func (s *memoryFilmMpa) DeleteFor(_ context.Context, filmID int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.filmMpa, filmID)
	return nil
}

// ---- likes ----

type memoryLikes struct{ db *memoryDB }

func (s *memoryLikes) Add(_ context.Context, filmID, userID int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.likes.Add(userID, filmID)
	return nil
}

func (s *memoryLikes) Remove(_ context.Context, filmID, userID int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.likes.Remove(userID, filmID)
	return nil
}

func (s *memoryLikes) Snapshot(_ context.Context) (models.LikeMatrix, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.db.likes.Clone(), nil
}

// ---- reference data ----

type memoryGenres struct{ db *memoryDB }

func (s *memoryGenres) Get(_ context.Context, id int) (models.Genre, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	g, ok := s.db.genres[id]
	if !ok {
		return models.Genre{}, ErrNotFound
	}
	return g, nil
}

func (s *memoryGenres) All(_ context.Context) ([]models.Genre, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]models.Genre, 0, len(s.db.genres))
	for _, g := range s.db.genres {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryMpa struct{ db *memoryDB }

func (s *memoryMpa) Get(_ context.Context, id int) (models.Mpa, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	m, ok := s.db.mpa[id]
	if !ok {
		return models.Mpa{}, ErrNotFound
	}
	return m, nil
}

func (s *memoryMpa) All(_ context.Context) ([]models.Mpa, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]models.Mpa, 0, len(s.db.mpa))
	for _, m := range s.db.mpa {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- directors ----

type memoryDirectors struct{ db *memoryDB }

func (s *memoryDirectors) Create(_ context.Context, d models.Director) (models.Director, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	d.ID = s.db.nextDirectorID
	s.db.nextDirectorID++
	s.db.directors[d.ID] = d
	return d, nil
}

func (s *memoryDirectors) Get(_ context.Context, id int) (models.Director, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	d, ok := s.db.directors[id]
	if !ok {
		return models.Director{}, ErrNotFound
	}
	return d, nil
}

func (s *memoryDirectors) All(_ context.Context) ([]models.Director, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make([]models.Director, 0, len(s.db.directors))
	for _, d := range s.db.directors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryDirectors) Update(_ context.Context, d models.Director) (models.Director, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.directors[d.ID]; !ok {
		return models.Director{}, ErrNotFound
	}
	s.db.directors[d.ID] = d
	return d, nil
}

func (s *memoryDirectors) Delete(_ context.Context, id int) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.directors[id]; !ok {
		return false, nil
	}
	delete(s.db.directors, id)
	for filmID, ids := range s.db.filmDirectors {
		kept := ids[:0]
		for _, d := range ids {
			if d != id {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 {
			delete(s.db.filmDirectors, filmID)
		} else {
			s.db.filmDirectors[filmID] = kept
		}
	}
	return true, nil
}

func (s *memoryDirectors) FilmIDs(_ context.Context, directorID int) ([]int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var ids []int
	for filmID, directors := range s.db.filmDirectors {
		for _, d := range directors {
			if d == directorID {
				ids = append(ids, filmID)
				break
			}
		}
	}
	sort.Ints(ids)
	return ids, nil
}

// ---- users ----

type memoryUsers struct{ db *memoryDB }

func (s *memoryUsers) Create(_ context.Context, u models.User) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u.ID = s.db.nextUserID
	s.db.nextUserID++
	s.db.users[u.ID] = u
	return u, nil
}

func (s *memoryUsers) Get(_ context.Context, id int) (models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}
