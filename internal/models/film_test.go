package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateJSON(t *testing.T) {
	f := Film{ID: 1, Name: "Stalker", ReleaseDate: NewDate(1979, time.May, 25)}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["releaseDate"] != "1979-05-25" {
		t.Errorf("releaseDate = %v", raw["releaseDate"])
	}

	var back Film
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.ReleaseDate.Equal(f.ReleaseDate.Time) {
		t.Errorf("ReleaseDate = %v, want %v", back.ReleaseDate, f.ReleaseDate)
	}

	var empty struct{ D Date }
	if err := json.Unmarshal([]byte(`{"D":null}`), &empty); err != nil || !empty.D.IsZero() {
		t.Errorf("null date = %v, %v", empty.D, err)
	}
	if err := json.Unmarshal([]byte(`{"D":"25.05.1979"}`), &empty); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestParseSortBy(t *testing.T) {
	tests := []struct {
		in   string
		want SortBy
		ok   bool
	}{
		{"year", SortByYear, true},
		{"LIKES", SortByLikes, true},
		{" year ", SortByYear, true},
		{"rating", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSortBy(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSortBy(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseSearchFields(t *testing.T) {
	tests := []struct {
		in      string
		want    []SearchField
		wantErr bool
	}{
		{in: "title", want: []SearchField{SearchByTitle}},
		{in: "director,title", want: []SearchField{SearchByTitle, SearchByDirector}},
		{in: "Title, title", want: []SearchField{SearchByTitle}},
		{in: "", want: nil},
		{in: "title,genre", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseSearchFields(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSearchFields(%q) error = %v", tt.in, err)
			continue
		}
		if tt.wantErr {
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseSearchFields(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for _, f := range tt.want {
			if !got[f] {
				t.Errorf("ParseSearchFields(%q) missing %q", tt.in, f)
			}
		}
	}
}

func TestFilmHasGenre(t *testing.T) {
	f := Film{Genres: []Genre{{ID: 2}, {ID: 5}}}
	if !f.HasGenre(5) || f.HasGenre(1) {
		t.Error("HasGenre() mismatch")
	}
	if ids := f.GenreIDs(); len(ids) != 2 || ids[0] != 2 || ids[1] != 5 {
		t.Errorf("GenreIDs() = %v", ids)
	}
}
