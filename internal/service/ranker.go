package service

import (
	"sort"

	"film-catalog-service/internal/models"
)

// RankFilter restricts a ranking. Set fields are combined with AND.
type RankFilter struct {
	GenreID *int
	Year    *int
}

func (f RankFilter) match(film models.Film) bool {
	if f.GenreID != nil && !film.HasGenre(*f.GenreID) {
		return false
	}
	if f.Year != nil && (film.ReleaseDate.IsZero() || film.ReleaseDate.Year() != *f.Year) {
		return false
	}
	return true
}

// Rank orders films by like count, most liked first, and keeps at most count.
// Ties keep ascending film id order. Genre filtering reads film.Genres, so
// callers filtering by genre must pass films with genres attached.
func Rank(films []models.Film, likeCounts map[int]int, count int, filter RankFilter) ([]models.Film, error) {
	if count < 0 {
		return nil, invalidf("count must not be negative, got %d", count)
	}
	if count == 0 {
		return []models.Film{}, nil
	}

	ranked := make([]models.Film, 0, len(films))
	for _, f := range films {
		if filter.match(f) {
			ranked = append(ranked, f)
		}
	}
	sortByLikes(ranked, likeCounts)

	if len(ranked) > count {
		ranked = ranked[:count]
	}
	return ranked, nil
}

func sortByLikes(films []models.Film, likeCounts map[int]int) {
	sort.SliceStable(films, func(i, j int) bool {
		ci, cj := likeCounts[films[i].ID], likeCounts[films[j].ID]
		if ci != cj {
			return ci > cj
		}
		return films[i].ID < films[j].ID
	})
}

func sortByReleaseDate(films []models.Film) {
	sort.SliceStable(films, func(i, j int) bool {
		di, dj := films[i].ReleaseDate, films[j].ReleaseDate
		if !di.Equal(dj.Time) {
			return di.Before(dj.Time)
		}
		return films[i].ID < films[j].ID
	})
}
