package service

import (
	"math/rand"
	"reflect"
	"testing"

	"film-catalog-service/internal/models"
)

func matrix(rows map[int][]int) models.LikeMatrix {
	m := make(models.LikeMatrix)
	for user, films := range rows {
		for _, f := range films {
			m.Add(user, f)
		}
	}
	return m
}

func TestLargestSetStrategy(t *testing.T) {
	tests := []struct {
		name   string
		likes  map[int][]int
		target int
		want   []int
	}{
		{
			name:   "largest neighbor supplies its unseen films",
			likes:  map[int][]int{1: {1, 2}, 2: {1, 2, 3, 4}, 3: {4}},
			target: 1,
			want:   []int{3, 4},
		},
		{
			name:   "later larger set with bigger overlap is added",
			likes:  map[int][]int{1: {1, 2}, 2: {1, 3, 4, 5}, 3: {1, 2, 6, 7, 8}},
			target: 1,
			want:   []int{3, 4, 5, 6, 7, 8},
		},
		{
			name:   "larger set with too small an overlap is skipped",
			likes:  map[int][]int{1: {1, 2}, 2: {1, 2, 3}, 3: {1, 9, 10, 11}},
			target: 1,
			want:   []int{3},
		},
		{
			name:   "smaller set after a larger one is never considered",
			likes:  map[int][]int{1: {1, 2}, 2: {5, 6, 7}, 3: {1, 2, 8}},
			target: 1,
			want:   nil,
		},
		{
			name:   "disjoint neighbors give nothing",
			likes:  map[int][]int{1: {1}, 2: {2, 3}},
			target: 1,
			want:   nil,
		},
		{
			name:   "user without likes gets nothing",
			likes:  map[int][]int{2: {1, 2}},
			target: 1,
			want:   nil,
		},
		{
			name:   "empty matrix",
			likes:  map[int][]int{},
			target: 1,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LargestSetStrategy{}.Recommend(matrix(tt.likes), tt.target)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Recommend() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopCoLikerStrategy(t *testing.T) {
	tests := []struct {
		name   string
		likes  map[int][]int
		target int
		want   []int
	}{
		{
			name:   "highest overlap wins",
			likes:  map[int][]int{1: {1, 2}, 2: {1, 3, 4, 5}, 3: {1, 2, 6, 7, 8}},
			target: 1,
			want:   []int{6, 7, 8},
		},
		{
			name:   "tie goes to lowest user id",
			likes:  map[int][]int{1: {1, 2}, 2: {1, 2, 3}, 3: {1, 2, 4}},
			target: 1,
			want:   []int{3},
		},
		{
			name:   "no overlap means no neighbor",
			likes:  map[int][]int{1: {1}, 2: {2, 3}},
			target: 1,
			want:   nil,
		},
		{
			name:   "neighbor with nothing new",
			likes:  map[int][]int{1: {1, 2}, 2: {1}},
			target: 1,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopCoLikerStrategy{}.Recommend(matrix(tt.likes), tt.target)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Recommend() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStrategiesNeverRecommendLikedFilms(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	strategies := []RecommendationStrategy{LargestSetStrategy{}, TopCoLikerStrategy{}}

	for round := 0; round < 200; round++ {
		m := make(models.LikeMatrix)
		for user := 1; user <= 8; user++ {
			for film := 1; film <= 12; film++ {
				if rng.Intn(3) == 0 {
					m.Add(user, film)
				}
			}
		}
		for _, s := range strategies {
			for user := 1; user <= 9; user++ {
				for _, film := range s.Recommend(m, user) {
					if m.Has(user, film) {
						t.Fatalf("%s recommended liked film %d to user %d (round %d)", s.Name(), film, user, round)
					}
				}
			}
		}
	}
}

func TestStrategyByName(t *testing.T) {
	for _, name := range []string{"largest-set", "top-co-liker"} {
		s, err := StrategyByName(name)
		if err != nil {
			t.Fatalf("StrategyByName(%q) error = %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("Name() = %q, want %q", s.Name(), name)
		}
	}
	if _, err := StrategyByName("random"); err == nil {
		t.Error("StrategyByName(random) should fail")
	}
}
