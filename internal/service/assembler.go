package service

import (
	"sort"

	"film-catalog-service/internal/models"
)

// Assemble merges a scalar film record with its relations into a new value.
// Genres are de-duplicated and sorted by id; director order is kept as given.
func Assemble(film models.Film, genres []models.Genre, directors []models.Director, mpa *models.Mpa) models.Film {
	out := film

	seen := make(map[int]bool, len(genres))
	out.Genres = make([]models.Genre, 0, len(genres))
	for _, g := range genres {
		if !seen[g.ID] {
			seen[g.ID] = true
			out.Genres = append(out.Genres, g)
		}
	}
	sort.Slice(out.Genres, func(i, j int) bool { return out.Genres[i].ID < out.Genres[j].ID })

	out.Directors = append(make([]models.Director, 0, len(directors)), directors...)

	out.Mpa = nil
	if mpa != nil {
		m := *mpa
		out.Mpa = &m
	}
	return out
}

// AssembleMany assembles a batch from relations pre-grouped by film id.
// A film missing from a grouping gets an empty genre set, an empty director
// list or no rating.
func AssembleMany(
	films []models.Film,
	genres map[int][]models.Genre,
	directors map[int][]models.Director,
	mpa map[int][]models.Mpa,
) []models.Film {
	out := make([]models.Film, 0, len(films))
	for _, f := range films {
		var rating *models.Mpa
		if m := mpa[f.ID]; len(m) > 0 {
			rating = &m[0]
		}
		out = append(out, Assemble(f, genres[f.ID], directors[f.ID], rating))
	}
	return out
}
