package service

import (
	"context"
	"log/slog"
	"time"

	"film-catalog-service/internal/models"
)

// AddLike records that userID likes filmID. Repeating it changes nothing.
func (s *FilmService) AddLike(ctx context.Context, filmID, userID int) (err error) {
	defer observe("add_like", time.Now(), &err)

	if err := s.checkLikeParties(ctx, filmID, userID); err != nil {
		return err
	}
	if err := s.stores.Likes.Add(ctx, filmID, userID); err != nil {
		return storeErr("add like", err)
	}
	s.invalidate(ctx)

	slog.Debug("like added", "film_id", filmID, "user_id", userID)
	return nil
}

// RemoveLike withdraws a like. Removing an absent like is not an error.
func (s *FilmService) RemoveLike(ctx context.Context, filmID, userID int) (err error) {
	defer observe("remove_like", time.Now(), &err)

	if err := s.checkLikeParties(ctx, filmID, userID); err != nil {
		return err
	}
	if err := s.stores.Likes.Remove(ctx, filmID, userID); err != nil {
		return storeErr("remove like", err)
	}
	s.invalidate(ctx)

	slog.Debug("like removed", "film_id", filmID, "user_id", userID)
	return nil
}

func (s *FilmService) checkLikeParties(ctx context.Context, filmID, userID int) error {
	if _, err := s.stores.Films.Get(ctx, filmID); err != nil {
		return lookupErr("film", filmID, err)
	}
	if _, err := s.stores.Users.Get(ctx, userID); err != nil {
		return lookupErr("user", userID, err)
	}
	return nil
}

// CommonFilms returns the films both users like, most liked first.
func (s *FilmService) CommonFilms(ctx context.Context, userID, friendID int) (_ []models.Film, err error) {
	defer observe("common_films", time.Now(), &err)

	for _, id := range []int{userID, friendID} {
		if _, err := s.stores.Users.Get(ctx, id); err != nil {
			return nil, lookupErr("user", id, err)
		}
	}

	likes, err := s.stores.Likes.Snapshot(ctx)
	if err != nil {
		return nil, storeErr("snapshot likes", err)
	}
	mine, theirs := likes.Likes(userID), likes.Likes(friendID)
	var shared []int
	for filmID := range mine {
		if theirs.Has(filmID) {
			shared = append(shared, filmID)
		}
	}
	if len(shared) == 0 {
		return []models.Film{}, nil
	}

	assembled, err := s.loadByIDs(ctx, shared)
	if err != nil {
		return nil, err
	}
	sortByLikes(assembled, likes.Counts())
	return assembled, nil
}
