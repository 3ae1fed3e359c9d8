package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"film-catalog-service/internal/models"
	"film-catalog-service/internal/service"
	"film-catalog-service/internal/validation"
)

const defaultPopularCount = 10

// FilmHandler handles HTTP requests for the film catalog.
type FilmHandler struct {
	svc *service.FilmService
}

// NewFilmHandler creates a new FilmHandler.
func NewFilmHandler(svc *service.FilmService) *FilmHandler {
	return &FilmHandler{svc: svc}
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// respondError maps the service error kinds onto HTTP statuses.
func respondError(c fiber.Ctx, err error, action string) error {
	switch {
	case service.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	case service.IsInvalidArgument(err):
		resp := ErrorResponse{Error: err.Error()}
		var verr *validation.Error
		if errors.As(err, &verr) {
			resp.Error = "validation failed"
			for _, f := range verr.Fields {
				resp.Fields = append(resp.Fields, f.Message)
			}
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	default:
		slog.Error("request failed", "action", action, "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to " + action,
		})
	}
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

func intParam(c fiber.Ctx, name string) (int, error) {
	v, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func optionalIntQuery(c fiber.Ctx, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &v, nil
}

// Health returns service health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *FilmHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"service":  "film-catalog-service",
		"strategy": h.svc.Strategy().Name(),
	})
}

// ListFilms returns the whole catalog.
// @Summary List films
// @Tags films
// @Produce json
// @Success 200 {array} models.Film
// @Failure 500 {object} ErrorResponse
// @Router /films [get]
func (h *FilmHandler) ListFilms(c fiber.Ctx) error {
	films, err := h.svc.ListFilms(c.Context())
	if err != nil {
		return respondError(c, err, "retrieve films")
	}
	return c.JSON(films)
}

// GetFilm returns one film with its rating, genres and directors.
// @Summary Get film
// @Tags films
// @Produce json
// @Param id path int true "Film ID"
// @Success 200 {object} models.Film
// @Failure 404 {object} ErrorResponse
// @Router /films/{id} [get]
func (h *FilmHandler) GetFilm(c fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid film ID")
	}
	film, err := h.svc.GetFilm(c.Context(), id)
	if err != nil {
		return respondError(c, err, "retrieve film")
	}
	return c.JSON(film)
}

// CreateFilm adds a film to the catalog.
// @Summary Create film
// @Tags films
// @Accept json
// @Produce json
// @Param film body models.Film true "Film"
// @Success 201 {object} models.Film
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /films [post]
func (h *FilmHandler) CreateFilm(c fiber.Ctx) error {
	var req models.Film
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	film, err := h.svc.CreateFilm(c.Context(), req)
	if err != nil {
		return respondError(c, err, "create film")
	}
	return c.Status(fiber.StatusCreated).JSON(film)
}

// UpdateFilm replaces a film and all of its associations.
// @Summary Update film
// @Tags films
// @Accept json
// @Produce json
// @Param film body models.Film true "Film"
// @Success 200 {object} models.Film
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /films [put]
func (h *FilmHandler) UpdateFilm(c fiber.Ctx) error {
	var req models.Film
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	film, err := h.svc.UpdateFilm(c.Context(), req)
	if err != nil {
		return respondError(c, err, "update film")
	}
	return c.JSON(film)
}

// DeleteFilm removes a film.
// @Summary Delete film
// @Tags films
// @Param id path int true "Film ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /films/{id} [delete]
func (h *FilmHandler) DeleteFilm(c fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid film ID")
	}
	if err := h.svc.DeleteFilm(c.Context(), id); err != nil {
		return respondError(c, err, "delete film")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddLike records a user's like.
// @Summary Like film
// @Tags likes
// @Param id path int true "Film ID"
// @Param userId path int true "User ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /films/{id}/like/{userId} [put]
func (h *FilmHandler) AddLike(c fiber.Ctx) error {
	filmID, userID, err := likeParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.svc.AddLike(c.Context(), filmID, userID); err != nil {
		return respondError(c, err, "add like")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveLike withdraws a user's like.
// @Summary Unlike film
// @Tags likes
// @Param id path int true "Film ID"
// @Param userId path int true "User ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /films/{id}/like/{userId} [delete]
func (h *FilmHandler) RemoveLike(c fiber.Ctx) error {
	filmID, userID, err := likeParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.svc.RemoveLike(c.Context(), filmID, userID); err != nil {
		return respondError(c, err, "remove like")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func likeParams(c fiber.Ctx) (int, int, error) {
	filmID, err := intParam(c, "id")
	if err != nil {
		return 0, 0, errors.New("invalid film ID")
	}
	userID, err := intParam(c, "userId")
	if err != nil {
		return 0, 0, errors.New("invalid user ID")
	}
	return filmID, userID, nil
}

// Popular returns the most liked films.
// @Summary Popular films
// @Tags films
// @Produce json
// @Param count query int false "Maximum number of films" default(10)
// @Param genreId query int false "Genre filter"
// @Param year query int false "Release year filter"
// @Success 200 {array} models.Film
// @Failure 400 {object} ErrorResponse
// @Router /films/popular [get]
func (h *FilmHandler) Popular(c fiber.Ctx) error {
	count := defaultPopularCount
	if raw := c.Query("count"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "invalid count")
		}
		count = v
	}
	genreID, err := optionalIntQuery(c, "genreId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	year, err := optionalIntQuery(c, "year")
	if err != nil {
		return badRequest(c, err.Error())
	}

	films, err := h.svc.Popular(c.Context(), count, genreID, year)
	if err != nil {
		return respondError(c, err, "rank films")
	}
	return c.JSON(films)
}

// Search finds films by title and/or director name.
// @Summary Search films
// @Tags films
// @Produce json
// @Param query query string false "Substring to look for"
// @Param by query string true "Comma separated fields" Enums(title,director,title\,director)
// @Success 200 {array} models.Film
// @Failure 400 {object} ErrorResponse
// @Router /films/search [get]
func (h *FilmHandler) Search(c fiber.Ctx) error {
	fields, err := models.ParseSearchFields(c.Query("by"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	films, err := h.svc.Search(c.Context(), c.Query("query"), fields)
	if err != nil {
		return respondError(c, err, "search films")
	}
	return c.JSON(films)
}

// FilmsByDirector lists a director's films.
// @Summary Films by director
// @Tags directors
// @Produce json
// @Param directorId path int true "Director ID"
// @Param sortBy query string true "Ordering" Enums(year,likes)
// @Success 200 {array} models.Film
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /films/director/{directorId} [get]
func (h *FilmHandler) FilmsByDirector(c fiber.Ctx) error {
	directorID, err := intParam(c, "directorId")
	if err != nil {
		return badRequest(c, "invalid director ID")
	}
	sortBy, ok := models.ParseSortBy(c.Query("sortBy"))
	if !ok {
		return badRequest(c, "sortBy must be year or likes")
	}
	films, err := h.svc.FilmsByDirector(c.Context(), directorID, sortBy)
	if err != nil {
		return respondError(c, err, "retrieve director films")
	}
	return c.JSON(films)
}

// CommonFilms lists films liked by both users.
// @Summary Common films
// @Tags likes
// @Produce json
// @Param userId query int true "User ID"
// @Param friendId query int true "Friend ID"
// @Success 200 {array} models.Film
// @Failure 404 {object} ErrorResponse
// @Router /films/common [get]
func (h *FilmHandler) CommonFilms(c fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Query("userId"))
	if err != nil {
		return badRequest(c, "invalid userId")
	}
	friendID, err := strconv.Atoi(c.Query("friendId"))
	if err != nil {
		return badRequest(c, "invalid friendId")
	}
	films, err := h.svc.CommonFilms(c.Context(), userID, friendID)
	if err != nil {
		return respondError(c, err, "retrieve common films")
	}
	return c.JSON(films)
}

// Recommendations returns films liked by the user's neighbors.
// @Summary Recommendations
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.Film
// @Router /users/{id}/recommendations [get]
func (h *FilmHandler) Recommendations(c fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return badRequest(c, "invalid user ID")
	}
	films, err := h.svc.Recommendations(c.Context(), id)
	if err != nil {
		return respondError(c, err, "build recommendations")
	}
	return c.JSON(films)
}
