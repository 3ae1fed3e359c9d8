package service

import (
	"context"
	"strings"
	"time"

	"film-catalog-service/internal/models"
)

// Search returns films whose title and/or any director name contains query,
// case-insensitively. A film matching on several fields appears once. An
// empty query matches every film.
func (s *FilmService) Search(ctx context.Context, query string, fields map[models.SearchField]bool) (_ []models.Film, err error) {
	defer observe("search", time.Now(), &err)

	byTitle, byDirector := fields[models.SearchByTitle], fields[models.SearchByDirector]
	if !byTitle && !byDirector {
		return nil, invalidf("at least one search field is required")
	}

	films, likes, err := s.catalogWithLikes(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matched := make([]models.Film, 0)
	for _, f := range films {
		if byTitle && strings.Contains(strings.ToLower(f.Name), needle) {
			matched = append(matched, f)
			continue
		}
		if byDirector && directedByMatch(f, needle) {
			matched = append(matched, f)
		}
	}
	sortByLikes(matched, likes.Counts())
	return matched, nil
}

func directedByMatch(f models.Film, needle string) bool {
	for _, d := range f.Directors {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			return true
		}
	}
	return false
}
