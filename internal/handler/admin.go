package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-night/internal/logger"
	"github.com/iliyamo/movie-night/internal/middleware"
	"github.com/iliyamo/movie-night/internal/model"
	"github.com/iliyamo/movie-night/internal/service"
)

type Scheduling interface {
	Approve(ctx context.Context, p *model.Principal, movieID string) (*model.Movie, error)
	ListPending(ctx context.Context, p *model.Principal) ([]model.MovieView, error)
	Schedule(ctx context.Context, p *model.Principal, in service.ScheduleInput) (*model.ScheduleView, error)
	ListSchedules(ctx context.Context) ([]model.ScheduleView, error)
	ForDay(ctx context.Context, raw string) ([]model.ScheduleView, error)
	DeleteSchedule(ctx context.Context, p *model.Principal, scheduleID string) error
}

// AdminHandler serves approval and the schedule calendar.
type AdminHandler struct {
	Scheduling Scheduling
	log        logger.Logger
}

func NewAdminHandler(s Scheduling, log logger.Logger) *AdminHandler {
	return &AdminHandler{Scheduling: s, log: log}
}

func (h *AdminHandler) Pending(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	movies, err := h.Scheduling.ListPending(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return respond(c, h.log, "admin.pending", err)
	}
	return c.JSON(http.StatusOK, movies)
}

func (h *AdminHandler) Approve(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	p := middleware.PrincipalFrom(c)
	movie, err := h.Scheduling.Approve(ctx, p, c.Param("id"))
	if err != nil {
		return respond(c, h.log, "admin.approve", err)
	}
	h.log.Info("admin.approve: approved", "movie_id", movie.ID, "admin_id", p.UserID)
	return c.JSON(http.StatusOK, movie)
}

// ListSchedules handles GET /admin/schedule. With ?date= only the
// schedules on that calendar day are returned.
func (h *AdminHandler) ListSchedules(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var (
		list []model.ScheduleView
		err  error
	)
	if day := strings.TrimSpace(c.QueryParam("date")); day != "" {
		list, err = h.Scheduling.ForDay(ctx, day)
	} else {
		list, err = h.Scheduling.ListSchedules(ctx)
	}
	if err != nil {
		return respond(c, h.log, "schedule.list", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) CreateSchedule(c echo.Context) error {
	var req service.ScheduleInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p := middleware.PrincipalFrom(c)
	view, err := h.Scheduling.Schedule(ctx, p, req)
	if err != nil {
		return respond(c, h.log, "schedule.create", err)
	}
	h.log.Info("schedule.create: scheduled", "schedule_id", view.ID, "movie_id", view.MovieID, "date", view.Date.String())
	return c.JSON(http.StatusCreated, view)
}

// DeleteSchedule handles DELETE /admin/schedule?id=.
func (h *AdminHandler) DeleteSchedule(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Scheduling.DeleteSchedule(ctx, middleware.PrincipalFrom(c), c.QueryParam("id")); err != nil {
		return respond(c, h.log, "schedule.delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
