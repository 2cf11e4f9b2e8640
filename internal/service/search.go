package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/movie-night/internal/model"
	"github.com/iliyamo/movie-night/internal/tmdb"
)

// MovieSearcher looks up movie metadata in an external catalogue.
type MovieSearcher interface {
	Search(ctx context.Context, query string) ([]tmdb.Result, error)
}

type SearchService struct {
	client MovieSearcher
}

func NewSearchService(client MovieSearcher) *SearchService {
	return &SearchService{client: client}
}

func (s *SearchService) Search(ctx context.Context, p *model.Principal, query string) ([]tmdb.Result, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	var v violations
	v.checkLength(query, 100, "Query is required", "Query must be less than 100 characters")
	if err := v.err(); err != nil {
		return nil, err
	}
	results, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, errors.Join(ErrUpstream, err)
	}
	return results, nil
}
