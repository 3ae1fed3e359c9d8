package models

import "sort"

// FilmSet is a set of film ids.
type FilmSet map[int]struct{}

// NewFilmSet builds a set from ids.
func NewFilmSet(ids ...int) FilmSet {
	s := make(FilmSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s FilmSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// IntersectionSize counts ids present in both sets.
func (s FilmSet) IntersectionSize(other FilmSet) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for id := range small {
		if large.Has(id) {
			n++
		}
	}
	return n
}

// Sorted returns the ids in ascending order.
func (s FilmSet) Sorted() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// LikeMatrix maps a user id to the set of films that user likes.
// A snapshot is owned by the caller and never refreshed in place.
type LikeMatrix map[int]FilmSet

// Likes returns the user's like set, empty if the user has none.
func (m LikeMatrix) Likes(userID int) FilmSet {
	if s, ok := m[userID]; ok {
		return s
	}
	return FilmSet{}
}

// Has reports whether userID likes filmID.
func (m LikeMatrix) Has(userID, filmID int) bool {
	return m.Likes(userID).Has(filmID)
}

// Add records a like. Adding twice is a no-op.
func (m LikeMatrix) Add(userID, filmID int) {
	s, ok := m[userID]
	if !ok {
		s = FilmSet{}
		m[userID] = s
	}
	s[filmID] = struct{}{}
}

// Remove deletes a like and drops users left with no likes.
func (m LikeMatrix) Remove(userID, filmID int) {
	s, ok := m[userID]
	if !ok {
		return
	}
	delete(s, filmID)
	if len(s) == 0 {
		delete(m, userID)
	}
}

// Users returns every user id with at least one like, ascending.
func (m LikeMatrix) Users() []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Counts returns the number of distinct users liking each film.
func (m LikeMatrix) Counts() map[int]int {
	counts := make(map[int]int)
	for _, films := range m {
		for filmID := range films {
			counts[filmID]++
		}
	}
	return counts
}

// Clone returns a deep copy.
func (m LikeMatrix) Clone() LikeMatrix {
	out := make(LikeMatrix, len(m))
	for userID, films := range m {
		c := make(FilmSet, len(films))
		for id := range films {
			c[id] = struct{}{}
		}
		out[userID] = c
	}
	return out
}
