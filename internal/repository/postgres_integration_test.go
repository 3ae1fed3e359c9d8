//go:build integration

package repository

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"film-catalog-service/internal/database"
	"film-catalog-service/internal/models"
	"film-catalog-service/internal/testinfra"
)

func newPostgresStores(t *testing.T) Stores {
	t.Helper()
	db, err := database.NewPostgres(testinfra.StartPostgres(t))
	if err != nil {
		t.Fatalf("NewPostgres() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db)
}

func mustUser(t *testing.T, s Stores, login string) models.User {
	t.Helper()
	u, err := s.Users.Create(context.Background(), models.User{Email: login + "@example.com", Login: login, Name: login})
	if err != nil {
		t.Fatalf("Users.Create(%q) error = %v", login, err)
	}
	return u
}

func TestPostgresStores(t *testing.T) {
	s := newPostgresStores(t)
	ctx := context.Background()

	t.Run("film lifecycle", func(t *testing.T) {
		d1, _ := s.Directors.Create(ctx, models.Director{Name: "First"})
		d2, _ := s.Directors.Create(ctx, models.Director{Name: "Second"})

		f, err := s.Films.Create(ctx, models.Film{
			Name:        "Film",
			ReleaseDate: models.NewDate(1999, time.March, 31),
			Duration:    136,
			Mpa:         &models.Mpa{ID: 3},
			Genres:      []models.Genre{{ID: 6}, {ID: 2}, {ID: 6}},
			Directors:   []models.Director{{ID: d2.ID}, {ID: d1.ID}, {ID: d2.ID}},
		})
		if err != nil {
			t.Fatal(err)
		}
		if f.ID == 0 || f.Genres != nil || f.Mpa != nil {
			t.Errorf("Create() = %+v, want scalar fields with an id", f)
		}

		got, err := s.Films.Get(ctx, f.ID)
		if err != nil || got.Name != "Film" || !got.ReleaseDate.Equal(models.NewDate(1999, time.March, 31).Time) || got.Duration != 136 {
			t.Errorf("Get() = %+v, %v", got, err)
		}

		genres, _ := s.FilmGenres.GetFor(ctx, f.ID)
		if !reflect.DeepEqual(genres, []models.Genre{{ID: 2, Name: "Drama"}, {ID: 6, Name: "Action"}}) {
			t.Errorf("genres = %v", genres)
		}
		directors, _ := s.FilmDirectors.GetFor(ctx, f.ID)
		if !reflect.DeepEqual(directors, []models.Director{d2, d1}) {
			t.Errorf("directors keep first-seen order: got %v", directors)
		}
		mpa, _ := s.FilmMpa.GetFor(ctx, f.ID)
		if len(mpa) != 1 || mpa[0].Name != "PG-13" {
			t.Errorf("mpa = %v", mpa)
		}

		f.Name = "Film, recut"
		f.Genres = []models.Genre{{ID: 1}}
		f.Directors = []models.Director{{ID: d1.ID}}
		f.Mpa = nil
		if _, err := s.Films.Update(ctx, f); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		batch, err := s.Films.LoadByIDs(ctx, []int{f.ID})
		if err != nil {
			t.Fatalf("LoadByIDs() error = %v", err)
		}
		if len(batch.Films) != 1 || batch.Films[0].Name != "Film, recut" {
			t.Errorf("LoadByIDs().Films = %+v", batch.Films)
		}
		if !reflect.DeepEqual(batch.Genres[f.ID], []models.Genre{{ID: 1, Name: "Comedy"}}) {
			t.Errorf("genres after update = %v", batch.Genres[f.ID])
		}
		if !reflect.DeepEqual(batch.Directors[f.ID], []models.Director{d1}) {
			t.Errorf("directors after update = %v", batch.Directors[f.ID])
		}
		if _, ok := batch.Mpa[f.ID]; ok {
			t.Errorf("mpa after clearing = %v", batch.Mpa[f.ID])
		}

		if _, err := s.Films.Update(ctx, models.Film{ID: 424242, Name: "ghost", Duration: 1}); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
		}
		if _, err := s.Films.Get(ctx, 424242); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("batch reads", func(t *testing.T) {
		a, _ := s.Films.Create(ctx, models.Film{Name: "a", Duration: 1, Genres: []models.Genre{{ID: 4}}})
		b, _ := s.Films.Create(ctx, models.Film{Name: "b", Duration: 1})

		got, err := s.Films.GetByIDs(ctx, []int{b.ID, a.ID, b.ID, 424242})
		if err != nil || len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
			t.Errorf("GetByIDs() = %+v, %v", got, err)
		}
		byFilm, err := s.FilmGenres.GetForMany(ctx, []int{a.ID, b.ID})
		if err != nil || len(byFilm) != 1 || byFilm[a.ID][0].ID != 4 {
			t.Errorf("GetForMany() = %v, %v", byFilm, err)
		}
		empty, err := s.Films.LoadByIDs(ctx, nil)
		if err != nil || len(empty.Films) != 0 {
			t.Errorf("LoadByIDs(nil) = %+v, %v", empty, err)
		}

		all, err := s.Films.LoadAll(ctx)
		if err != nil {
			t.Fatalf("LoadAll() error = %v", err)
		}
		for i := 1; i < len(all.Films); i++ {
			if all.Films[i-1].ID >= all.Films[i].ID {
				t.Fatalf("LoadAll() not ordered by id: %v", all.Films)
			}
		}
		if g := all.Genres[a.ID]; len(g) != 1 || g[0].Name != "Thriller" {
			t.Errorf("LoadAll().Genres[%d] = %v", a.ID, g)
		}
	})

	t.Run("likes are idempotent and cascade", func(t *testing.T) {
		f, _ := s.Films.Create(ctx, models.Film{Name: "liked", Duration: 1})
		u := mustUser(t, s, "liker")

		for i := 0; i < 2; i++ {
			if err := s.Likes.Add(ctx, f.ID, u.ID); err != nil {
				t.Fatalf("Likes.Add() #%d error = %v", i+1, err)
			}
		}
		snap, _ := s.Likes.Snapshot(ctx)
		if !snap.Has(u.ID, f.ID) || len(snap.Likes(u.ID)) != 1 {
			t.Errorf("snapshot after double add = %v", snap)
		}
		if err := s.Likes.Remove(ctx, 424242, u.ID); err != nil {
			t.Errorf("Likes.Remove(absent) error = %v", err)
		}

		ok, err := s.Films.Delete(ctx, f.ID)
		if err != nil || !ok {
			t.Fatalf("Delete() = %v, %v", ok, err)
		}
		snap, _ = s.Likes.Snapshot(ctx)
		if snap.Has(u.ID, f.ID) {
			t.Error("like survived film deletion")
		}
		if ok, _ := s.Films.Delete(ctx, f.ID); ok {
			t.Error("second Delete() reported true")
		}
	})

	t.Run("director delete unlinks films", func(t *testing.T) {
		d, _ := s.Directors.Create(ctx, models.Director{Name: "Gone"})
		f, _ := s.Films.Create(ctx, models.Film{Name: "orphan", Duration: 1, Directors: []models.Director{{ID: d.ID}}})

		ids, _ := s.Directors.FilmIDs(ctx, d.ID)
		if !reflect.DeepEqual(ids, []int{f.ID}) {
			t.Errorf("FilmIDs() = %v", ids)
		}
		if ok, err := s.Directors.Delete(ctx, d.ID); err != nil || !ok {
			t.Fatalf("Directors.Delete() = %v, %v", ok, err)
		}
		directors, _ := s.FilmDirectors.GetFor(ctx, f.ID)
		if len(directors) != 0 {
			t.Errorf("directors after delete = %v", directors)
		}
		if _, err := s.Films.Get(ctx, f.ID); err != nil {
			t.Errorf("film removed with its director: %v", err)
		}
	})

	t.Run("snapshot reads never mix versions", func(t *testing.T) {
		oldD, _ := s.Directors.Create(ctx, models.Director{Name: "Old"})
		newD, _ := s.Directors.Create(ctx, models.Director{Name: "New"})
		before, _ := s.Films.Create(ctx, models.Film{
			Name: "Before", Duration: 1,
			Genres:    []models.Genre{{ID: 1}},
			Directors: []models.Director{{ID: oldD.ID}},
		})
		after := before
		after.Name = "After"
		after.Genres = []models.Genre{{ID: 2}}
		after.Directors = []models.Director{{ID: newD.ID}}
		before.Genres = []models.Genre{{ID: 1}}
		before.Directors = []models.Director{{ID: oldD.ID}}

		var wg sync.WaitGroup
		done := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			states := [2]models.Film{after, before}
			for i := 0; ; i++ {
				select {
				case <-done:
					return
				default:
				}
				if _, err := s.Films.Update(ctx, states[i%2]); err != nil {
					t.Errorf("Update() error = %v", err)
					return
				}
			}
		}()

		for i := 0; i < 200; i++ {
			b, err := s.Films.LoadByIDs(ctx, []int{before.ID})
			if err != nil {
				t.Errorf("LoadByIDs() error = %v", err)
				break
			}
			f := b.Films[0]
			wantGenre, wantDirector := 1, oldD.ID
			if f.Name == "After" {
				wantGenre, wantDirector = 2, newD.ID
			}
			g, d := b.Genres[f.ID], b.Directors[f.ID]
			if len(g) != 1 || g[0].ID != wantGenre || len(d) != 1 || d[0].ID != wantDirector {
				t.Errorf("LoadByIDs() mixed versions: %q with genres %v and directors %v", f.Name, g, d)
				break
			}
		}
		close(done)
		wg.Wait()
	})
}
