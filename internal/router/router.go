package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-night/internal/handler"
	"github.com/iliyamo/movie-night/internal/logger"
	"github.com/iliyamo/movie-night/internal/middleware"
)

// Deps carries what route registration needs beyond the handlers.
type Deps struct {
	Sessions   middleware.SessionResolver
	CookieName string
	Log        logger.Logger

	// RateLimit and Cache are optional; nil leaves routes unthrottled
	// and uncached.
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
	DB        handler.Pinger
}

func (d Deps) optional() echo.MiddlewareFunc {
	return middleware.Session(d.Sessions, d.CookieName, false, d.Log)
}

func (d Deps) required() echo.MiddlewareFunc {
	return middleware.Session(d.Sessions, d.CookieName, true, d.Log)
}

// chain is a required session followed by the rate limiter. The limiter
// runs after the session so buckets are keyed per user.
func (d Deps) chain() []echo.MiddlewareFunc {
	return append([]echo.MiddlewareFunc{d.required()}, d.limited()...)
}

func (d Deps) limited() []echo.MiddlewareFunc {
	if d.RateLimit == nil {
		return nil
	}
	return []echo.MiddlewareFunc{d.RateLimit}
}

// RegisterRoutes registers routes that need no session.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))
}

// RegisterAuth registers sign-in, sign-out and the caller lookup.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, d Deps) {
	g := e.Group("/auth")
	g.POST("/session", a.CreateSession, d.limited()...)
	g.DELETE("/session", a.DeleteSession, d.required())
	g.GET("/me", a.Me, d.required())
}

// RegisterMovies registers listing, suggesting, voting and search. Listing
// works anonymously; the rest needs a session. Middleware is attached per
// route because /movies serves both.
func RegisterMovies(e *echo.Echo, m *handler.MovieHandler, d Deps) {
	e.GET("/movies", m.List, d.optional())
	e.POST("/movies", m.Suggest, d.chain()...)
	e.POST("/movies/:id/vote", m.Vote, d.chain()...)

	search := d.chain()
	if d.Cache != nil {
		search = append(search, d.Cache)
	}
	e.GET("/movies/search", m.SearchMovies, search...)
}

// RegisterAdmin registers approval and scheduling. Reading the schedule is
// public; everything else requires an admin session.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, d Deps) {
	e.GET("/admin/schedule", a.ListSchedules)

	admin := append([]echo.MiddlewareFunc{d.required(), middleware.RequireAdmin()}, d.limited()...)
	e.GET("/admin/movies", a.Pending, d.required(), middleware.RequireAdmin())
	e.POST("/admin/movies/:id/approve", a.Approve, admin...)
	e.POST("/admin/schedule", a.CreateSchedule, admin...)
	e.DELETE("/admin/schedule", a.DeleteSchedule, admin...)
}
