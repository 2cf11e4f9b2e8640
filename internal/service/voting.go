package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movie-night/internal/model"
	"github.com/iliyamo/movie-night/internal/queue"
	"github.com/iliyamo/movie-night/internal/repository"
)

// Notifier receives vote events after the vote is stored. Implementations
// must not block.
type Notifier interface {
	NotifyVote(ev queue.VoteEvent)
}

type VotingService struct {
	movies   repository.MovieStore
	votes    repository.VoteStore
	notifier Notifier
}

func NewVotingService(movies repository.MovieStore, votes repository.VoteStore, notifier Notifier) *VotingService {
	return &VotingService{movies: movies, votes: votes, notifier: notifier}
}

// ToggleVote removes p's vote on the movie if there is one and adds it
// otherwise. The (movie, user) unique key decides races: a concurrent
// insert that loses still reports "added" with the stored row.
func (s *VotingService) ToggleVote(ctx context.Context, p *model.Principal, movieID string) (*model.VoteResult, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return nil, invalid("ID is required")
	}

	movie, err := s.movies.GetByID(ctx, movieID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	if movie.SuggestedByUserID != "" && movie.SuggestedByUserID == p.UserID {
		return nil, ErrSelfVote
	}

	removed, err := s.votes.Delete(ctx, movieID, p.UserID)
	if err != nil {
		return nil, err
	}

	result := &model.VoteResult{Action: model.VoteRemoved}
	if !removed {
		vote, err := s.addVote(ctx, movieID, p.UserID)
		if err != nil {
			return nil, err
		}
		result.Action = model.VoteAdded
		result.Vote = vote
	}

	if result.VoteCount, err = s.votes.CountByMovie(ctx, movieID); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyVote(queue.VoteEvent{
			Action:     result.Action,
			MovieID:    movie.ID,
			MovieTitle: movie.Title,
			VoterID:    p.UserID,
			VoterName:  p.DisplayName,
			VoteCount:  result.VoteCount,
			OccurredAt: time.Now().UTC(),
		})
	}
	return result, nil
}

func (s *VotingService) addVote(ctx context.Context, movieID, userID string) (*model.Vote, error) {
	vote := &model.Vote{ID: newID(), MovieID: movieID, UserID: userID}
	err := s.votes.Create(ctx, vote)
	switch {
	case err == nil:
		return vote, nil
	case errors.Is(err, repository.ErrDuplicate):
		return s.votes.Get(ctx, movieID, userID)
	case errors.Is(err, repository.ErrMissingReference):
		return nil, ErrMovieNotFound
	}
	return nil, err
}
