package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"film-catalog-service/internal/models"
	"film-catalog-service/internal/repository"
	"film-catalog-service/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := service.NewFilmService(repository.NewMemory(), service.LargestSetStrategy{}, nil)
	app := fiber.New()
	NewFilmHandler(svc).Register(app.Group("/api/v1"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

const filmBody = `{"name":"Alien","description":"In space","releaseDate":"1979-05-25","duration":117,"mpa":{"id":4},"genres":[{"id":4},{"id":4}]}`

func TestFilmRoutes(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/api/v1/films", filmBody)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", status, body)
	}
	var created models.Film
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID != 1 || created.Mpa == nil || created.Mpa.Name != "R" || len(created.Genres) != 1 {
		t.Errorf("created = %+v", created)
	}

	status, body = do(t, app, http.MethodGet, "/api/v1/films/1", "")
	if status != http.StatusOK || !strings.Contains(string(body), `"releaseDate":"1979-05-25"`) {
		t.Errorf("get status = %d, body = %s", status, body)
	}

	status, _ = do(t, app, http.MethodGet, "/api/v1/films/popular?count=5", "")
	if status != http.StatusOK {
		t.Errorf("popular status = %d", status)
	}

	status, _ = do(t, app, http.MethodDelete, "/api/v1/films/1", "")
	if status != http.StatusNoContent {
		t.Errorf("delete status = %d", status)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing film", http.MethodGet, "/api/v1/films/99", "", http.StatusNotFound},
		{"non numeric id", http.MethodGet, "/api/v1/films/abc", "", http.StatusBadRequest},
		{"negative count", http.MethodGet, "/api/v1/films/popular?count=-1", "", http.StatusBadRequest},
		{"unknown genre filter", http.MethodGet, "/api/v1/films/popular?genreId=42", "", http.StatusNotFound},
		{"search without fields", http.MethodGet, "/api/v1/films/search?query=x", "", http.StatusBadRequest},
		{"search unknown field", http.MethodGet, "/api/v1/films/search?query=x&by=genre", "", http.StatusBadRequest},
		{"bad sort mode", http.MethodGet, "/api/v1/films/director/1?sortBy=rating", "", http.StatusBadRequest},
		{"unknown director", http.MethodGet, "/api/v1/films/director/1?sortBy=year", "", http.StatusNotFound},
		{"invalid film", http.MethodPost, "/api/v1/films", `{"name":" ","duration":0}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/v1/films", `{"name":`, http.StatusBadRequest},
		{"like unknown film", http.MethodPut, "/api/v1/films/5/like/1", "", http.StatusNotFound},
		{"common unknown users", http.MethodGet, "/api/v1/films/common?userId=1&friendId=2", "", http.StatusNotFound},
		{"missing mpa", http.MethodGet, "/api/v1/mpa/9", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, tt.method, tt.path, tt.body)
			if status != tt.want {
				t.Errorf("status = %d, want %d (body %s)", status, tt.want, body)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(body, &resp); err != nil || resp.Error == "" {
				t.Errorf("body = %s, want error response", body)
			}
		})
	}
}

func TestValidationErrorListsFields(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, http.MethodPost, "/api/v1/films", `{"name":"X","releaseDate":"1890-01-01","duration":10}`)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Fields) != 1 || !strings.Contains(resp.Fields[0], "releaseDate") {
		t.Errorf("fields = %v", resp.Fields)
	}
}

func TestLikesAndRecommendations(t *testing.T) {
	app := newTestApp(t)

	for _, name := range []string{"One", "Two", "Three", "Four"} {
		body := `{"name":"` + name + `","releaseDate":"2001-01-01","duration":90}`
		if status, b := do(t, app, http.MethodPost, "/api/v1/films", body); status != http.StatusCreated {
			t.Fatalf("create film status = %d, body = %s", status, b)
		}
	}
	for _, login := range []string{"a", "b", "c"} {
		body := `{"email":"` + login + `@example.com","login":"` + login + `"}`
		if status, b := do(t, app, http.MethodPost, "/api/v1/users", body); status != http.StatusCreated {
			t.Fatalf("create user status = %d, body = %s", status, b)
		}
	}
	likes := map[string][]string{"1": {"1", "2"}, "2": {"1", "2", "3", "4"}, "3": {"4"}}
	for user, films := range likes {
		for _, film := range films {
			if status, _ := do(t, app, http.MethodPut, "/api/v1/films/"+film+"/like/"+user, ""); status != http.StatusNoContent {
				t.Fatalf("like %s by %s status = %d", film, user, status)
			}
		}
	}

	status, body := do(t, app, http.MethodGet, "/api/v1/users/1/recommendations", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var films []models.Film
	if err := json.Unmarshal(body, &films); err != nil {
		t.Fatal(err)
	}
	if len(films) != 2 || films[0].ID != 3 || films[1].ID != 4 {
		t.Errorf("recommendations = %s", body)
	}

	status, body = do(t, app, http.MethodGet, "/api/v1/films/common?userId=1&friendId=2", "")
	if status != http.StatusOK || !strings.Contains(string(body), `"name":"One"`) {
		t.Errorf("common status = %d, body = %s", status, body)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, body := do(t, app, http.MethodGet, "/api/v1/health", "")
	if status != http.StatusOK || !strings.Contains(string(body), "largest-set") {
		t.Errorf("health status = %d, body = %s", status, body)
	}
}
