package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iliyamo/movie-night/internal/config"
	"github.com/iliyamo/movie-night/internal/logger"
)

func newTestClient(url string, retries int) *Client {
	return NewClient(config.TMDBConfig{BaseURL: url + "/", APIKey: "k3y", Timeout: time.Second, MaxRetries: retries}, logger.Discard())
}

func TestSearchEncodesQueryAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "the thing & co" {
			t.Errorf("query not round-tripped: %q", got)
		}
		if r.URL.Query().Get("api_key") != "k3y" {
			t.Errorf("missing api key")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":1091,"title":"The Thing","overview":"Antarctica.","poster_path":"/t.jpg","release_date":"1982-06-25"}]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL, 0).Search(context.Background(), "the thing & co")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res) != 1 || res[0].ID != 1091 || res[0].PosterPath != "/t.jpg" || res[0].ReleaseDate != "1982-06-25" {
		t.Fatalf("unexpected results %+v", res)
	}
}

func TestSearchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL, 2).Search(context.Background(), "x")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res == nil || len(res) != 0 {
		t.Fatalf("expected empty non-nil results, got %#v", res)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestSearchDoesNotRetryRejections(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Search(context.Background(), "x")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestSearchWithoutKey(t *testing.T) {
	c := NewClient(config.TMDBConfig{BaseURL: "http://unused"}, logger.Discard())
	if _, err := c.Search(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
