package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-night/internal/model"
)

const principalKey = "principal"

// PrincipalFrom returns the caller resolved by Session, or nil for an
// anonymous request.
func PrincipalFrom(c echo.Context) *model.Principal {
	p, _ := c.Get(principalKey).(*model.Principal)
	return p
}

// WithPrincipal stores p as the caller. Used by Session and by tests.
func WithPrincipal(c echo.Context, p *model.Principal) {
	c.Set(principalKey, p)
}

// userID identifies the caller for rate-limit keys; "anon" when no user
// is authenticated.
func userID(c echo.Context) string {
	if p := PrincipalFrom(c); p.Authenticated() {
		return p.UserID
	}
	return "anon"
}
