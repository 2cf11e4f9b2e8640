package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-night/internal/logger"
	"github.com/iliyamo/movie-night/internal/service"
)

const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func writeError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{"error": code, "message": message})
}

// respond maps a service error onto a status code and error body. Caller
// mistakes are logged at WARN, everything else at ERROR without leaking
// the internal message.
func respond(c echo.Context, log logger.Logger, op string, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		log.BusinessError(op+": validation failed", err)
		return writeError(c, http.StatusBadRequest, "validation_error", verr.Error())
	case errors.Is(err, service.ErrUnauthorized):
		log.BusinessError(op+": unauthorized", err)
		return writeError(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
	case errors.Is(err, service.ErrForbidden):
		log.BusinessError(op+": forbidden", err)
		return writeError(c, http.StatusForbidden, "forbidden", "Admin access required")
	case errors.Is(err, service.ErrDuplicatePending):
		log.BusinessError(op+": duplicate pending title", err)
		return writeError(c, http.StatusBadRequest, "duplicate_pending", service.ErrDuplicatePending.Error())
	case errors.Is(err, service.ErrSelfVote):
		log.BusinessError(op+": self vote", err)
		return writeError(c, http.StatusBadRequest, "self_vote", service.ErrSelfVote.Error())
	case errors.Is(err, service.ErrMovieNotFound):
		log.BusinessError(op+": movie not found", err)
		return writeError(c, http.StatusNotFound, "movie_not_found", "Movie not found")
	case errors.Is(err, service.ErrScheduleNotFound):
		log.BusinessError(op+": schedule not found", err)
		return writeError(c, http.StatusNotFound, "schedule_not_found", "Schedule not found")
	case errors.Is(err, service.ErrDateConflict):
		log.BusinessError(op+": date conflict", err)
		return writeError(c, http.StatusConflict, "date_conflict", service.ErrDateConflict.Error())
	case errors.Is(err, service.ErrUpstream):
		log.InternalError(op+": upstream failure", err)
		return writeError(c, http.StatusBadGateway, "upstream_error", "Movie search is currently unavailable")
	}
	log.InternalError(op+": failed", err)
	return writeError(c, http.StatusInternalServerError, "internal_error", "internal server error")
}

func invalidBody(c echo.Context) error {
	return writeError(c, http.StatusBadRequest, "invalid_json", "invalid json body")
}
