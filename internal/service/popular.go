package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"film-catalog-service/internal/metrics"
	"film-catalog-service/internal/models"
)

// Popular returns the count most liked films, optionally narrowed to a genre
// and a release year.
func (s *FilmService) Popular(ctx context.Context, count int, genreID, year *int) (_ []models.Film, err error) {
	defer observe("popular", time.Now(), &err)

	if count < 0 {
		return nil, invalidf("count must not be negative, got %d", count)
	}
	if count == 0 {
		return []models.Film{}, nil
	}
	if genreID != nil {
		if _, err := s.stores.Genres.Get(ctx, *genreID); err != nil {
			return nil, lookupErr("genre", *genreID, err)
		}
	}

	key := fmt.Sprintf(popularFilmsKey, count, optionalKey(genreID), optionalKey(year))
	var cached []models.Film
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	gen := s.cache.Generation(ctx)
	films, likes, err := s.catalogWithLikes(ctx)
	if err != nil {
		return nil, err
	}

	ranked, err := Rank(films, likes.Counts(), count, RankFilter{GenreID: genreID, Year: year})
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, ranked, gen)
	return ranked, nil
}

func optionalKey(v *int) string {
	if v == nil {
		return "all"
	}
	return strconv.Itoa(*v)
}

// Recommendations runs the configured strategy over a fresh like snapshot and
// returns the assembled candidate films ordered by id.
func (s *FilmService) Recommendations(ctx context.Context, userID int) (_ []models.Film, err error) {
	defer observe("recommendations", time.Now(), &err)

	likes, err := s.stores.Likes.Snapshot(ctx)
	if err != nil {
		return nil, storeErr("snapshot likes", err)
	}

	ids := s.strategy.Recommend(likes, userID)
	metrics.RecommendedFilms.WithLabelValues(s.strategy.Name()).Observe(float64(len(ids)))
	if len(ids) == 0 {
		return []models.Film{}, nil
	}

	return s.loadByIDs(ctx, ids)
}
