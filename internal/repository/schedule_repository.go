package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/movie-night/internal/calendar"
	"github.com/iliyamo/movie-night/internal/model"
)

const scheduleViewQuery = `SELECT s.id, s.movie_id, s.date, s.created_at,
	m.id, m.title, m.description, m.poster_url
	FROM movie_schedules s
	JOIN movies m ON m.id = s.movie_id`

// ScheduleRepo manages persistence for movie schedules. Dates are stored in
// a DATE column and always written as "YYYY-MM-DD" so that no zone
// conversion happens in the driver.
type ScheduleRepo struct{ db *sql.DB }

func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

func (r *ScheduleRepo) Create(ctx context.Context, s *model.MovieSchedule) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO movie_schedules (id, movie_id, date, created_by) VALUES (?,?,?,?)",
		s.ID, s.MovieID, s.Date.String(), nullString(s.CreatedBy))
	if err != nil {
		return translate(err)
	}
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM movie_schedules WHERE id=?", s.ID).Scan(&s.CreatedAt)
}

func (r *ScheduleRepo) ExistsOnDate(ctx context.Context, day calendar.Day) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM movie_schedules WHERE date=?)", day.String()).Scan(&exists)
	return exists, err
}

func (r *ScheduleRepo) GetView(ctx context.Context, id string) (*model.ScheduleView, error) {
	row := r.db.QueryRowContext(ctx, scheduleViewQuery+" WHERE s.id=?", id)
	v, err := scanScheduleView(row)
	if err != nil {
		return nil, translate(err)
	}
	return v, nil
}

// List returns every schedule, earliest date first; entries on the same
// date keep creation order.
func (r *ScheduleRepo) List(ctx context.Context) ([]model.ScheduleView, error) {
	return r.list(ctx, scheduleViewQuery+" ORDER BY s.date ASC, s.created_at ASC, s.id ASC")
}

func (r *ScheduleRepo) ListByDate(ctx context.Context, day calendar.Day) ([]model.ScheduleView, error) {
	return r.list(ctx, scheduleViewQuery+" WHERE s.date=? ORDER BY s.created_at ASC, s.id ASC", day.String())
}

// Delete removes a schedule and reports whether it existed.
func (r *ScheduleRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movie_schedules WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ScheduleRepo) list(ctx context.Context, query string, args ...any) ([]model.ScheduleView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ScheduleView, 0)
	for rows.Next() {
		v, err := scanScheduleView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func scanScheduleView(row rowScanner) (*model.ScheduleView, error) {
	var (
		v    model.ScheduleView
		date time.Time
	)
	if err := row.Scan(&v.ID, &v.MovieID, &date, &v.CreatedAt,
		&v.Movie.ID, &v.Movie.Title, &v.Movie.Description, &v.Movie.PosterURL); err != nil {
		return nil, err
	}
	v.Date = calendar.FromDate(date)
	return &v, nil
}
