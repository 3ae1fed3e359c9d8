package service

import (
	"context"
	"time"

	"film-catalog-service/internal/models"
)

// FilmsByDirector lists a director's films ordered by release date or by
// like count. An unknown director is NotFound; a director without films
// yields an empty list.
func (s *FilmService) FilmsByDirector(ctx context.Context, directorID int, sortBy models.SortBy) (_ []models.Film, err error) {
	defer observe("films_by_director", time.Now(), &err)

	if sortBy != models.SortByYear && sortBy != models.SortByLikes {
		return nil, invalidf("unsupported sort mode %q", sortBy)
	}
	if _, err := s.stores.Directors.Get(ctx, directorID); err != nil {
		return nil, lookupErr("director", directorID, err)
	}

	ids, err := s.stores.Directors.FilmIDs(ctx, directorID)
	if err != nil {
		return nil, storeErr("director films", err)
	}
	if len(ids) == 0 {
		return []models.Film{}, nil
	}
	assembled, err := s.loadByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	switch sortBy {
	case models.SortByYear:
		sortByReleaseDate(assembled)
	case models.SortByLikes:
		likes, err := s.stores.Likes.Snapshot(ctx)
		if err != nil {
			return nil, storeErr("snapshot likes", err)
		}
		sortByLikes(assembled, likes.Counts())
	}
	return assembled, nil
}
