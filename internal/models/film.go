package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of release dates and birthdays.
const DateLayout = "2006-01-02"

// Date is a calendar date serialized as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Genre is a seeded reference genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Mpa is a film's age/content rating classification.
type Mpa struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Director is a person credited as a film's director.
type Director struct {
	ID   int    `json:"id"`
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// Film is the fully assembled catalog entry.
//
// Genres behave as a set (unique by id, sorted by id on output).
// Directors keep their credit order.
type Film struct {
	ID          int        `json:"id"`
	Name        string     `json:"name" validate:"required,notblank,max=500"`
	Description string     `json:"description" validate:"max=200"`
	ReleaseDate Date       `json:"releaseDate" validate:"releasedate"`
	Duration    int        `json:"duration" validate:"gt=0"`
	Rate        int        `json:"rate" validate:"gte=0"`
	Mpa         *Mpa       `json:"mpa"`
	Genres      []Genre    `json:"genres"`
	Directors   []Director `json:"directors"`
}

// GenreIDs returns the ids of the film's genres in their current order.
func (f Film) GenreIDs() []int {
	ids := make([]int, 0, len(f.Genres))
	for _, g := range f.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// HasGenre reports whether the film is tagged with genreID.
func (f Film) HasGenre(genreID int) bool {
	for _, g := range f.Genres {
		if g.ID == genreID {
			return true
		}
	}
	return false
}

// User is the minimal user record the catalog needs for like bookkeeping.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Login    string `json:"login" validate:"required,nowhitespace,max=100"`
	Name     string `json:"name"`
	Birthday Date   `json:"birthday"`
}

// SortBy selects the ordering of a director's films.
type SortBy string

const (
	SortByYear  SortBy = "year"
	SortByLikes SortBy = "likes"
)

// ParseSortBy accepts "year" or "likes", case-insensitively.
func ParseSortBy(s string) (SortBy, bool) {
	switch SortBy(strings.ToLower(strings.TrimSpace(s))) {
	case SortByYear:
		return SortByYear, true
	case SortByLikes:
		return SortByLikes, true
	}
	return "", false
}

// SearchField is a film attribute that search can match against.
type SearchField string

const (
	SearchByTitle    SearchField = "title"
	SearchByDirector SearchField = "director"
)

// ParseSearchFields parses a comma separated list such as "title,director".
// Unknown names are returned as an error; duplicates collapse.
func ParseSearchFields(s string) (map[SearchField]bool, error) {
	fields := make(map[SearchField]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		switch SearchField(part) {
		case SearchByTitle, SearchByDirector:
			fields[SearchField(part)] = true
		default:
			return nil, fmt.Errorf("unknown search field %q", part)
		}
	}
	return fields, nil
}
