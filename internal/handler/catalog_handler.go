package handler

import (
	"github.com/gofiber/fiber/v3"

	"film-catalog-service/internal/models"
)

// ListDirectors returns every director.
// @Summary List directors
// @Tags directors
// @Produce json
// @Success 200 {array} models.Director
// @Router /directors [get]
func (h *FilmHandler) ListDirectors(c fiber.Ctx) error {
	directors, err := h.svc.ListDirectors(c.Context())
	if err != nil {
		return respondError(c, err, "retrieve directors")
	}
	return c.JSON(directors)
}

// GetDirector returns one director.
// @Summary Get director
// @Tags directors
// @Produce json
// @Param id path int true "Director ID"
// @Success 200 {object} models.Director
// @Failure 404 {object} ErrorResponse
// @Router /directors/{id} [get]
func (h *FilmHandler) GetDirector(c fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid director ID")
	}
	d, err := h.svc.GetDirector(c.Context(), id)
	if err != nil {
		return respondError(c, err, "retrieve director")
	}
	return c.JSON(d)
}

// CreateDirector adds a director.
// @Summary Create director
// @Tags directors
// @Accept json
// @Produce json
// @Param director body models.Director true "Director"
// @Success 201 {object} models.Director
// @Failure 400 {object} ErrorResponse
// @Router /directors [post]
func (h *FilmHandler) CreateDirector(c fiber.Ctx) error {
	var req models.Director
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	d, err := h.svc.CreateDirector(c.Context(), req)
	if err != nil {
		return respondError(c, err, "create director")
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}

// UpdateDirector renames a director.
// @Summary Update director
// @Tags directors
// @Accept json
// @Produce json
// @Param director body models.Director true "Director"
// @Success 200 {object} models.Director
// @Failure 404 {object} ErrorResponse
// @Router /directors [put]
func (h *FilmHandler) UpdateDirector(c fiber.Ctx) error {
	var req models.Director
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	d, err := h.svc.UpdateDirector(c.Context(), req)
	if err != nil {
		return respondError(c, err, "update director")
	}
	return c.JSON(d)
}

// DeleteDirector removes a director and unlinks it from its films.
// @Summary Delete director
// @Tags directors
// @Param id path int true "Director ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /directors/{id} [delete]
func (h *FilmHandler) DeleteDirector(c fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid director ID")
	}
	if err := h.svc.DeleteDirector(c.Context(), id); err != nil {
		return respondError(c, err, "delete director")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListGenres returns the seeded genres.
// @Summary List genres
// @Tags reference
// @Produce json
// @Success 200 {array} models.Genre
// @Router /genres [get]
func (h *FilmHandler) ListGenres(c fiber.Ctx) error {
	genres, err := h.svc.ListGenres(c.Context())
	if err != nil {
		return respondError(c, err, "retrieve genres")
	}
	return c.JSON(genres)
}

// GetGenre returns one genre.
// @Summary Get genre
// @Tags reference
// @Produce json
// @Param id path int true "Genre ID"
// @Success 200 {object} models.Genre
// @Failure 404 {object} ErrorResponse
// @Router /genres/{id} [get]
func (h *FilmHandler) GetGenre(c fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid genre ID")
	}
	g, err := h.svc.GetGenre(c.Context(), id)
	if err != nil {
		return respondError(c, err, "retrieve genre")
	}
	return c.JSON(g)
}

// ListMpa returns the seeded rating classifications.
// @Summary List ratings
// @Tags reference
// @Produce json
// @Success 200 {array} models.Mpa
// @Router /mpa [get]
func (h *FilmHandler) ListMpa(c fiber.Ctx) error {
	all, err := h.svc.ListMpa(c.Context())
	if err != nil {
		return respondError(c, err, "retrieve ratings")
	}
	return c.JSON(all)
}

// GetMpa returns one rating classification.
// @Summary Get rating
// @Tags reference
// @Produce json
// @Param id path int true "Rating ID"
// @Success 200 {object} models.Mpa
// @Failure 404 {object} ErrorResponse
// @Router /mpa/{id} [get]
func (h *FilmHandler) GetMpa(c fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid rating ID")
	}
	m, err := h.svc.GetMpa(c.Context(), id)
	if err != nil {
		return respondError(c, err, "retrieve rating")
	}
	return c.JSON(m)
}

// CreateUser registers a user who can like films.
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.User true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /users [post]
func (h *FilmHandler) CreateUser(c fiber.Ctx) error {
	var req models.User
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	u, err := h.svc.CreateUser(c.Context(), req)
	if err != nil {
		return respondError(c, err, "create user")
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// GetUser returns one user.
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *FilmHandler) GetUser(c fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid user ID")
	}
	u, err := h.svc.GetUser(c.Context(), id)
	if err != nil {
		return respondError(c, err, "retrieve user")
	}
	return c.JSON(u)
}
