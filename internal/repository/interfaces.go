package repository

import (
	"context"
	"time"

	"github.com/iliyamo/movie-night/internal/calendar"
	"github.com/iliyamo/movie-night/internal/model"
)

// UserStore persists users mirrored from the identity provider.
type UserStore interface {
	Upsert(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// SessionStore persists hashed session tokens.
type SessionStore interface {
	Store(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	Validate(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
}

// MovieStore persists movie suggestions. Transaction runs fn against a
// store bound to a single database transaction.
type MovieStore interface {
	Transaction(ctx context.Context, fn func(MovieStore) error) error
	// CountByTitleKey counts movies with the given normalized title and
	// approval state, locking the matching index range until the
	// surrounding transaction ends.
	CountByTitleKey(ctx context.Context, titleKey string, approved bool) (int, error)
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	Approve(ctx context.Context, id string) (*model.Movie, error)
	ListWithVotes(ctx context.Context, approved bool, viewerID string) ([]model.MovieView, error)
}

// VoteStore persists votes; (movie, user) is unique.
type VoteStore interface {
	Create(ctx context.Context, v *model.Vote) error
	Get(ctx context.Context, movieID, userID string) (*model.Vote, error)
	Delete(ctx context.Context, movieID, userID string) (bool, error)
	CountByMovie(ctx context.Context, movieID string) (int, error)
}

// ScheduleStore persists movie schedules.
type ScheduleStore interface {
	Create(ctx context.Context, s *model.MovieSchedule) error
	ExistsOnDate(ctx context.Context, day calendar.Day) (bool, error)
	GetView(ctx context.Context, id string) (*model.ScheduleView, error)
	List(ctx context.Context) ([]model.ScheduleView, error)
	ListByDate(ctx context.Context, day calendar.Day) ([]model.ScheduleView, error)
	Delete(ctx context.Context, id string) (bool, error)
}
