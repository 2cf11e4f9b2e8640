package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/movie-night/internal/calendar"
	"github.com/iliyamo/movie-night/internal/model"
	"github.com/iliyamo/movie-night/internal/repository"
)

type ScheduleInput struct {
	MovieID string    `json:"movieId"`
	Date    DateInput `json:"date"`
}

// DateInput is a schedule date as sent by clients: a date or timestamp
// string, or a number of milliseconds since the Unix epoch. Numbers are
// turned into an RFC 3339 UTC timestamp; other JSON values are kept
// verbatim and fail date parsing.
type DateInput string

func (d *DateInput) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*d = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = DateInput(s)
	default:
		ms, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
			*d = DateInput(raw)
			return nil
		}
		*d = DateInput(time.UnixMilli(int64(ms)).UTC().Format(time.RFC3339Nano))
	}
	return nil
}

// SchedulingService covers admin approval and the schedule calendar. All
// dates are reduced to calendar days in loc.
type SchedulingService struct {
	movies       repository.MovieStore
	schedules    repository.ScheduleStore
	loc          *time.Location
	allowSameDay bool
}

func NewSchedulingService(movies repository.MovieStore, schedules repository.ScheduleStore, loc *time.Location, allowSameDay bool) *SchedulingService {
	if loc == nil {
		loc = time.UTC
	}
	return &SchedulingService{movies: movies, schedules: schedules, loc: loc, allowSameDay: allowSameDay}
}

// Approve marks a movie approved. Approving twice is not an error.
func (s *SchedulingService) Approve(ctx context.Context, p *model.Principal, movieID string) (*model.Movie, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return nil, invalid("ID is required")
	}
	movie, err := s.movies.Approve(ctx, movieID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMovieNotFound
	}
	return movie, err
}

// ListPending returns unapproved movies with vote information.
func (s *SchedulingService) ListPending(ctx context.Context, p *model.Principal) ([]model.MovieView, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	movies, err := s.movies.ListWithVotes(ctx, false, p.UserID)
	if err != nil {
		return nil, err
	}
	markOwn(movies, p.UserID)
	return movies, nil
}

func (s *SchedulingService) Schedule(ctx context.Context, p *model.Principal, in ScheduleInput) (*model.ScheduleView, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	var v violations
	movieID := strings.TrimSpace(in.MovieID)
	if movieID == "" {
		v.add("Movie ID is required")
	}
	var day calendar.Day
	if strings.TrimSpace(string(in.Date)) == "" {
		v.add("Date is required")
	} else if d, err := calendar.Parse(string(in.Date), s.loc); err != nil {
		v.add("Invalid date format")
	} else {
		day = d
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}

	if !s.allowSameDay {
		taken, err := s.schedules.ExistsOnDate(ctx, day)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDateConflict
		}
	}

	sched := &model.MovieSchedule{ID: newID(), MovieID: movieID, Date: day, CreatedBy: p.UserID}
	if err := s.schedules.Create(ctx, sched); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return s.schedules.GetView(ctx, sched.ID)
}

// ListSchedules returns all schedules ordered by ascending date.
func (s *SchedulingService) ListSchedules(ctx context.Context) ([]model.ScheduleView, error) {
	return s.schedules.List(ctx)
}

// ForDay returns the schedules on the calendar day denoted by raw, which
// is interpreted in the service's zone.
func (s *SchedulingService) ForDay(ctx context.Context, raw string) ([]model.ScheduleView, error) {
	day, err := calendar.Parse(raw, s.loc)
	if err != nil {
		return nil, invalid("Invalid date format")
	}
	return s.schedules.ListByDate(ctx, day)
}

func (s *SchedulingService) DeleteSchedule(ctx context.Context, p *model.Principal, scheduleID string) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	scheduleID = strings.TrimSpace(scheduleID)
	if scheduleID == "" {
		return invalid("Schedule ID is required")
	}
	deleted, err := s.schedules.Delete(ctx, scheduleID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrScheduleNotFound
	}
	return nil
}
