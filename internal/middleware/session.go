package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-night/internal/logger"
	"github.com/iliyamo/movie-night/internal/model"
	"github.com/iliyamo/movie-night/internal/service"
)

// SessionResolver maps a raw session token to its principal.
type SessionResolver interface {
	Resolve(ctx context.Context, raw string) (*model.Principal, error)
}

// Session resolves the caller from a Bearer token or the session cookie
// and stores the principal in the context. With required=false anonymous
// callers pass through; otherwise they get 401.
func Session(resolver SessionResolver, cookieName string, required bool, log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := SessionToken(c, cookieName)
			if raw == "" {
				if required {
					return abort(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
				}
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			p, err := resolver.Resolve(ctx, raw)
			cancel()
			switch {
			case err == nil:
				WithPrincipal(c, p)
			case errors.Is(err, service.ErrUnauthorized):
				if required {
					return abort(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired session")
				}
			default:
				log.InternalError("session.resolve: failed", err, "path", c.Path())
				if required {
					return abort(c, http.StatusInternalServerError, "internal_error", "internal server error")
				}
			}
			return next(c)
		}
	}
}

// SessionToken returns the raw token from "Authorization: Bearer" or, when
// absent, from the named cookie.
func SessionToken(c echo.Context, cookieName string) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
		if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
			return strings.TrimSpace(auth[7:])
		}
		return ""
	}
	if ck, err := c.Cookie(cookieName); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

func abort(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": code, "message": msg})
}
