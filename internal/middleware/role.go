package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin rejects anonymous callers with 401 and signed-in
// non-admins with 403. It must run after Session.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if !p.Authenticated() {
				return abort(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
			}
			if !p.IsAdmin {
				return abort(c, http.StatusForbidden, "forbidden", "Admin access required")
			}
			return next(c)
		}
	}
}
