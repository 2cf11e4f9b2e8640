package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-night/internal/logger"
	"github.com/iliyamo/movie-night/internal/middleware"
	"github.com/iliyamo/movie-night/internal/model"
	"github.com/iliyamo/movie-night/internal/service"
	"github.com/iliyamo/movie-night/internal/tmdb"
)

type Suggestions interface {
	Suggest(ctx context.Context, p *model.Principal, in service.SuggestInput) (*model.Movie, error)
	List(ctx context.Context, p *model.Principal, approved bool) ([]model.MovieView, error)
}

type Votes interface {
	ToggleVote(ctx context.Context, p *model.Principal, movieID string) (*model.VoteResult, error)
}

type Search interface {
	Search(ctx context.Context, p *model.Principal, query string) ([]tmdb.Result, error)
}

// MovieHandler serves the member-facing movie routes.
type MovieHandler struct {
	Suggestions Suggestions
	Votes       Votes
	Search      Search
	log         logger.Logger
}

func NewMovieHandler(s Suggestions, v Votes, search Search, log logger.Logger) *MovieHandler {
	return &MovieHandler{Suggestions: s, Votes: v, Search: search, log: log}
}

// List handles GET /movies?approved=bool. A missing flag lists pending
// suggestions.
func (h *MovieHandler) List(c echo.Context) error {
	approved := false
	if raw := strings.TrimSpace(c.QueryParam("approved")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return writeError(c, http.StatusBadRequest, "validation_error", "approved must be a boolean")
		}
		approved = v
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	movies, err := h.Suggestions.List(ctx, middleware.PrincipalFrom(c), approved)
	if err != nil {
		return respond(c, h.log, "movies.list", err)
	}
	return c.JSON(http.StatusOK, movies)
}

func (h *MovieHandler) Suggest(c echo.Context) error {
	var req service.SuggestInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p := middleware.PrincipalFrom(c)
	movie, err := h.Suggestions.Suggest(ctx, p, req)
	if err != nil {
		return respond(c, h.log, "movies.suggest", err)
	}
	h.log.Info("movies.suggest: created", "movie_id", movie.ID, "user_id", p.UserID)
	return c.JSON(http.StatusCreated, movie)
}

func (h *MovieHandler) Vote(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Votes.ToggleVote(ctx, middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		return respond(c, h.log, "movies.vote", err)
	}
	return c.JSON(http.StatusOK, res)
}

// SearchMovies proxies GET /movies/search?query= to the metadata API.
func (h *MovieHandler) SearchMovies(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	results, err := h.Search.Search(ctx, middleware.PrincipalFrom(c), c.QueryParam("query"))
	if err != nil {
		return respond(c, h.log, "movies.search", err)
	}
	return c.JSON(http.StatusOK, results)
}
