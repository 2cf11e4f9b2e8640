package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-night/internal/handler"
	"github.com/iliyamo/movie-night/internal/logger"
	"github.com/iliyamo/movie-night/internal/model"
	"github.com/iliyamo/movie-night/internal/service"
	"github.com/iliyamo/movie-night/internal/tmdb"
)

type tokenResolver map[string]*model.Principal

func (r tokenResolver) Resolve(_ context.Context, raw string) (*model.Principal, error) {
	if p, ok := r[raw]; ok {
		return p, nil
	}
	return nil, service.ErrUnauthorized
}

type movies struct{}

func (movies) Suggest(_ context.Context, _ *model.Principal, in service.SuggestInput) (*model.Movie, error) {
	return &model.Movie{ID: "m-1", Title: in.Title}, nil
}

func (movies) List(context.Context, *model.Principal, bool) ([]model.MovieView, error) {
	return []model.MovieView{}, nil
}

func (movies) ToggleVote(context.Context, *model.Principal, string) (*model.VoteResult, error) {
	return &model.VoteResult{Action: model.VoteRemoved}, nil
}

func (movies) Search(context.Context, *model.Principal, string) ([]tmdb.Result, error) {
	return []tmdb.Result{}, nil
}

type scheduling struct{}

func (scheduling) Approve(_ context.Context, _ *model.Principal, id string) (*model.Movie, error) {
	return &model.Movie{ID: id, Approved: true}, nil
}
func (scheduling) ListPending(context.Context, *model.Principal) ([]model.MovieView, error) {
	return []model.MovieView{}, nil
}
func (scheduling) Schedule(_ context.Context, _ *model.Principal, in service.ScheduleInput) (*model.ScheduleView, error) {
	return &model.ScheduleView{ID: "s-1", MovieID: in.MovieID}, nil
}
func (scheduling) ListSchedules(context.Context) ([]model.ScheduleView, error) {
	return []model.ScheduleView{}, nil
}
func (scheduling) ForDay(context.Context, string) ([]model.ScheduleView, error) {
	return []model.ScheduleView{}, nil
}
func (scheduling) DeleteSchedule(context.Context, *model.Principal, string) error { return nil }

func newServer() *echo.Echo {
	e := echo.New()
	d := Deps{
		Sessions: tokenResolver{
			"member": {UserID: "u-1", DisplayName: "Ada"},
			"admin":  {UserID: "u-2", DisplayName: "Grace", IsAdmin: true},
		},
		CookieName: "session_token",
		Log:        logger.Discard(),
	}
	RegisterRoutes(e, d)
	RegisterMovies(e, handler.NewMovieHandler(movies{}, movies{}, movies{}, d.Log), d)
	RegisterAdmin(e, handler.NewAdminHandler(scheduling{}, d.Log), d)
	return e
}

func TestRouteAccess(t *testing.T) {
	e := newServer()
	cases := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/movies", "", http.StatusOK},
		{http.MethodGet, "/movies?approved=true", "member", http.StatusOK},
		{http.MethodPost, "/movies", "", http.StatusUnauthorized},
		{http.MethodPost, "/movies/m-1/vote", "member", http.StatusOK},
		{http.MethodPost, "/movies/m-1/vote", "stale", http.StatusUnauthorized},
		{http.MethodGet, "/movies/search?query=dune", "member", http.StatusOK},
		{http.MethodGet, "/admin/schedule", "", http.StatusOK},
		{http.MethodGet, "/admin/movies", "member", http.StatusForbidden},
		{http.MethodGet, "/admin/movies", "admin", http.StatusOK},
		{http.MethodPost, "/admin/movies/m-1/approve", "", http.StatusUnauthorized},
		{http.MethodPost, "/admin/movies/m-1/approve", "admin", http.StatusOK},
		{http.MethodDelete, "/admin/schedule?id=s-1", "member", http.StatusForbidden},
		{http.MethodDelete, "/admin/schedule?id=s-1", "admin", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+tc.token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s %s (token %q): expected %d, got %d", tc.method, tc.path, tc.token, tc.want, rec.Code)
		}
	}
}

func TestSessionCookieAccepted(t *testing.T) {
	e := newServer()
	req := httptest.NewRequest(http.MethodGet, "/admin/movies", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "admin"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with cookie session, got %d", rec.Code)
	}
}
