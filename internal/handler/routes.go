package handler

import "github.com/gofiber/fiber/v3"

// Register mounts the catalog API on r. Static film paths come before /films/:id.
func (h *FilmHandler) Register(r fiber.Router) {
	r.Get("/health", h.Health)

	r.Get("/films/popular", h.Popular)
	r.Get("/films/search", h.Search)
	r.Get("/films/common", h.CommonFilms)
	r.Get("/films/director/:directorId", h.FilmsByDirector)
	r.Get("/films", h.ListFilms)
	r.Post("/films", h.CreateFilm)
	r.Put("/films", h.UpdateFilm)
	r.Get("/films/:id", h.GetFilm)
	r.Delete("/films/:id", h.DeleteFilm)
	r.Put("/films/:id/like/:userId", h.AddLike)
	r.Delete("/films/:id/like/:userId", h.RemoveLike)

	r.Get("/directors", h.ListDirectors)
	r.Post("/directors", h.CreateDirector)
	r.Put("/directors", h.UpdateDirector)
	r.Get("/directors/:id", h.GetDirector)
	r.Delete("/directors/:id", h.DeleteDirector)

	r.Get("/genres", h.ListGenres)
	r.Get("/genres/:id", h.GetGenre)
	r.Get("/mpa", h.ListMpa)
	r.Get("/mpa/:id", h.GetMpa)

	r.Post("/users", h.CreateUser)
	r.Get("/users/:id", h.GetUser)
	r.Get("/users/:id/recommendations", h.Recommendations)
}
