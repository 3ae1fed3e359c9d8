package service

import (
	"fmt"

	"film-catalog-service/internal/models"
)

// RecommendationStrategy picks candidate film ids for a user from one like
// snapshot. Implementations must never return a film the user already likes.
type RecommendationStrategy interface {
	Name() string
	Recommend(likes models.LikeMatrix, userID int) []int
}

// StrategyByName resolves a configured strategy name.
func StrategyByName(name string) (RecommendationStrategy, error) {
	switch name {
	case LargestSetStrategy{}.Name():
		return LargestSetStrategy{}, nil
	case TopCoLikerStrategy{}.Name():
		return TopCoLikerStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown recommendation strategy %q", name)
}

// LargestSetStrategy walks the other users in ascending id order and keeps a
// running maximum of like-set size. Only a user that raises that maximum is
// considered; it becomes a source when its overlap with the target is
// non-empty and larger than the number of sources recorded so far. The
// result is the union of the sources' full like sets minus the target's likes.
//
// Selection is driven by set cardinality, not similarity: a smaller user with
// a bigger overlap is skipped once a larger set has been seen.
type LargestSetStrategy struct{}

func (LargestSetStrategy) Name() string { return "largest-set" }

func (LargestSetStrategy) Recommend(likes models.LikeMatrix, userID int) []int {
	target := likes.Likes(userID)

	var sources []models.FilmSet
	largest := 0
	for _, other := range likes.Users() {
		if other == userID {
			continue
		}
		set := likes[other]
		if len(set) <= largest {
			continue
		}
		largest = len(set)

		overlap := set.IntersectionSize(target)
		if overlap > 0 && len(sources) < overlap {
			sources = append(sources, set)
		}
	}

	result := make(models.FilmSet)
	for _, set := range sources {
		for filmID := range set {
			if !target.Has(filmID) {
				result[filmID] = struct{}{}
			}
		}
	}
	return result.Sorted()
}

// TopCoLikerStrategy takes the single user sharing the most likes with the
// target (lowest id wins a tie) and returns that user's likes the target
// lacks. Without any overlap there is no neighbor and no recommendation.
type TopCoLikerStrategy struct{}

func (TopCoLikerStrategy) Name() string { return "top-co-liker" }

func (TopCoLikerStrategy) Recommend(likes models.LikeMatrix, userID int) []int {
	target := likes.Likes(userID)

	neighbor, best := 0, 0
	for _, other := range likes.Users() {
		if other == userID {
			continue
		}
		if overlap := likes[other].IntersectionSize(target); overlap > best {
			neighbor, best = other, overlap
		}
	}
	if best == 0 {
		return nil
	}

	result := make(models.FilmSet)
	for filmID := range likes[neighbor] {
		if !target.Has(filmID) {
			result[filmID] = struct{}{}
		}
	}
	return result.Sorted()
}
