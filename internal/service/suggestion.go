package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/movie-night/internal/model"
	"github.com/iliyamo/movie-night/internal/repository"
)

type SuggestInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PosterURL   string `json:"posterUrl"`
	SuggestedBy string `json:"suggestedBy"`
}

type SuggestionService struct {
	movies repository.MovieStore
}

func NewSuggestionService(movies repository.MovieStore) *SuggestionService {
	return &SuggestionService{movies: movies}
}

// Suggest stores a new pending movie. A title already awaiting approval is
// rejected with ErrDuplicatePending; a title matching N approved movies is
// stored as "title (N+1)".
func (s *SuggestionService) Suggest(ctx context.Context, p *model.Principal, in SuggestInput) (*model.Movie, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.PosterURL = strings.TrimSpace(in.PosterURL)
	in.SuggestedBy = strings.TrimSpace(in.SuggestedBy)
	if in.SuggestedBy == "" {
		in.SuggestedBy = strings.TrimSpace(p.DisplayName)
	}
	if err := validateSuggestion(in); err != nil {
		return nil, err
	}

	key := TitleKey(in.Title)
	movie := &model.Movie{
		ID:                newID(),
		Title:             in.Title,
		TitleKey:          key,
		Description:       in.Description,
		PosterURL:         in.PosterURL,
		SuggestedBy:       in.SuggestedBy,
		SuggestedByUserID: p.UserID,
	}

	// Two first suggestions of the same title can deadlock on the gap locks
	// taken by the counts. One retry lets the loser see the winner's row.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		movie.Title = in.Title
		err = s.movies.Transaction(ctx, func(tx repository.MovieStore) error {
			pending, err := tx.CountByTitleKey(ctx, key, false)
			if err != nil {
				return err
			}
			if pending > 0 {
				return ErrDuplicatePending
			}
			approved, err := tx.CountByTitleKey(ctx, key, true)
			if err != nil {
				return err
			}
			if approved > 0 {
				movie.Title = fmt.Sprintf("%s (%d)", in.Title, approved+1)
			}
			return tx.Create(ctx, movie)
		})
		if !errors.Is(err, repository.ErrDeadlock) {
			break
		}
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrDuplicatePending
	}
	if err != nil {
		return nil, err
	}
	return movie, nil
}

// List returns movies in the given approval state as seen by p, which may
// be anonymous.
func (s *SuggestionService) List(ctx context.Context, p *model.Principal, approved bool) ([]model.MovieView, error) {
	viewer := ""
	if p.Authenticated() {
		viewer = p.UserID
	}
	movies, err := s.movies.ListWithVotes(ctx, approved, viewer)
	if err != nil {
		return nil, err
	}
	markOwn(movies, viewer)
	return movies, nil
}

func markOwn(movies []model.MovieView, viewer string) {
	for i := range movies {
		movies[i].IsOwnSubmission = viewer != "" && movies[i].SuggestedByUserID == viewer
		if viewer == "" {
			movies[i].UserVote = false
		}
	}
}

func validateSuggestion(in SuggestInput) error {
	var v violations
	v.checkLength(in.Title, 255, "Title is required", "Title must be less than 255 characters")
	v.checkLength(in.Description, 1000, "Description is required", "Description must be less than 1000 characters")
	if !isHTTPURL(in.PosterURL) {
		v.add("Invalid URL format")
	}
	v.checkLength(in.SuggestedBy, 100, "Suggested by is required", "Suggested by must be less than 100 characters")
	return v.err()
}
