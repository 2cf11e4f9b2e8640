// Package service implements the movie-night policies: suggestions with
// duplicate handling, vote toggling, approval and scheduling, and sessions.
// Every policy call takes the caller as an explicit *model.Principal.
package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-night/internal/model"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrDuplicatePending = errors.New("a movie with this title is already awaiting approval")
	ErrSelfVote         = errors.New("you cannot vote for your own suggestion")
	ErrMovieNotFound    = errors.New("movie not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrDateConflict     = errors.New("a movie is already scheduled on this date")
	ErrUpstream         = errors.New("upstream service unavailable")
)

// ValidationError lists every violated input constraint.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, ", ")
}

type violations []string

func (v *violations) add(msg string) { *v = append(*v, msg) }

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Problems: v}
}

func invalid(msg string) error {
	return &ValidationError{Problems: []string{msg}}
}

func requireUser(p *model.Principal) error {
	if !p.Authenticated() {
		return ErrUnauthorized
	}
	return nil
}

func requireAdmin(p *model.Principal) error {
	if !p.Authenticated() {
		return ErrUnauthorized
	}
	if !p.IsAdmin {
		return ErrForbidden
	}
	return nil
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
