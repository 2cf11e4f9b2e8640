package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/movie-night/internal/model"
)

func newVotingFixture() (*VotingService, *fakeVoteRepo, *recordingNotifier) {
	votes := newFakeVoteRepo()
	movies := newFakeMovieRepo(votes)
	movies.seed(model.Movie{ID: "m1", Title: "Dune", Approved: true, SuggestedBy: "Bob", SuggestedByUserID: bob.UserID})
	n := &recordingNotifier{}
	return NewVotingService(movies, votes, n), votes, n
}

func TestToggleVoteRoundTrip(t *testing.T) {
	svc, votes, notifier := newVotingFixture()
	ctx := context.Background()

	added, err := svc.ToggleVote(ctx, alice, "m1")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if added.Action != model.VoteAdded || added.VoteCount != 1 || added.Vote == nil || added.Vote.UserID != alice.UserID {
		t.Fatalf("unexpected add result %+v", added)
	}

	removed, err := svc.ToggleVote(ctx, alice, "m1")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if removed.Action != model.VoteRemoved || removed.VoteCount != 0 || removed.Vote != nil {
		t.Fatalf("unexpected remove result %+v", removed)
	}
	if n, _ := votes.CountByMovie(ctx, "m1"); n != 0 {
		t.Fatalf("expected no vote rows, got %d", n)
	}

	if len(notifier.events) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.events))
	}
	if ev := notifier.events[0]; ev.Action != "added" || ev.MovieTitle != "Dune" || ev.VoterName != "Alice" || ev.VoteCount != 1 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if notifier.events[1].Action != "removed" {
		t.Fatalf("unexpected event %+v", notifier.events[1])
	}
}

func TestToggleVoteCountsOtherVoters(t *testing.T) {
	svc, _, _ := newVotingFixture()
	ctx := context.Background()
	carol := &model.Principal{UserID: "u-carol", DisplayName: "Carol"}

	if _, err := svc.ToggleVote(ctx, alice, "m1"); err != nil {
		t.Fatalf("alice: %v", err)
	}
	res, err := svc.ToggleVote(ctx, carol, "m1")
	if err != nil {
		t.Fatalf("carol: %v", err)
	}
	if res.VoteCount != 2 {
		t.Fatalf("expected 2 votes, got %d", res.VoteCount)
	}
}

func TestToggleVoteRejections(t *testing.T) {
	svc, votes, notifier := newVotingFixture()
	ctx := context.Background()

	if _, err := svc.ToggleVote(ctx, nil, "m1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var verr *ValidationError
	if _, err := svc.ToggleVote(ctx, alice, " "); !errors.As(err, &verr) || verr.Error() != "ID is required" {
		t.Fatalf("expected ID validation error, got %v", err)
	}
	if _, err := svc.ToggleVote(ctx, alice, "missing"); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}
	if _, err := svc.ToggleVote(ctx, bob, "m1"); !errors.Is(err, ErrSelfVote) {
		t.Fatalf("expected ErrSelfVote, got %v", err)
	}
	if len(votes.votes) != 0 || len(notifier.events) != 0 {
		t.Fatalf("rejected toggles must not write or notify")
	}
}

func TestToggleVoteSelfCheckUsesUserID(t *testing.T) {
	svc, _, _ := newVotingFixture()
	// Same display name as the suggester, different account.
	impostor := &model.Principal{UserID: "u-other-bob", DisplayName: "Bob"}
	res, err := svc.ToggleVote(context.Background(), impostor, "m1")
	if err != nil || res.Action != model.VoteAdded {
		t.Fatalf("expected vote to be added, got %+v, %v", res, err)
	}
}

func TestToggleVoteConcurrentInsertResolvesToAdded(t *testing.T) {
	svc, votes, _ := newVotingFixture()
	votes.raceOnCreate = true

	res, err := svc.ToggleVote(context.Background(), alice, "m1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if res.Action != model.VoteAdded || res.Vote == nil || res.Vote.ID != "concurrent" || res.VoteCount != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestToggleVoteWithoutNotifier(t *testing.T) {
	votes := newFakeVoteRepo()
	movies := newFakeMovieRepo(votes)
	movies.seed(model.Movie{ID: "m1", Title: "Dune"})
	svc := NewVotingService(movies, votes, nil)
	if _, err := svc.ToggleVote(context.Background(), alice, "m1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
}
