package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/movie-night/internal/calendar"
	"github.com/iliyamo/movie-night/internal/model"
	"github.com/iliyamo/movie-night/internal/queue"
	"github.com/iliyamo/movie-night/internal/repository"
)

type fakeMovieRepo struct {
	movies map[string]*model.Movie
	order  []string
	votes  *fakeVoteRepo
	// blindCounts makes CountByTitleKey report zero, as two racing
	// transactions would, so that only the unique index catches duplicates.
	blindCounts bool
	// beforeCreate, when set, runs first in Create; a non-nil error aborts
	// the insert.
	beforeCreate func(m *model.Movie) error
}

func newFakeMovieRepo(votes *fakeVoteRepo) *fakeMovieRepo {
	return &fakeMovieRepo{movies: make(map[string]*model.Movie), votes: votes}
}

func (r *fakeMovieRepo) Transaction(ctx context.Context, fn func(repository.MovieStore) error) error {
	return fn(r)
}

func (r *fakeMovieRepo) CountByTitleKey(ctx context.Context, titleKey string, approved bool) (int, error) {
	if r.blindCounts {
		return 0, nil
	}
	n := 0
	for _, m := range r.movies {
		if m.TitleKey == titleKey && m.Approved == approved {
			n++
		}
	}
	return n, nil
}

func (r *fakeMovieRepo) Create(ctx context.Context, m *model.Movie) error {
	if r.beforeCreate != nil {
		if err := r.beforeCreate(m); err != nil {
			return err
		}
	}
	for _, existing := range r.movies {
		if !existing.Approved && !m.Approved && existing.TitleKey == m.TitleKey {
			return repository.ErrDuplicate
		}
	}
	m.CreatedAt = time.Now().UTC()
	m.UpdatedAt = m.CreatedAt
	stored := *m
	r.movies[m.ID] = &stored
	r.order = append(r.order, m.ID)
	return nil
}

func (r *fakeMovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	m, ok := r.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *m
	return &out, nil
}

func (r *fakeMovieRepo) Approve(ctx context.Context, id string) (*model.Movie, error) {
	m, ok := r.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.Approved = true
	out := *m
	return &out, nil
}

func (r *fakeMovieRepo) ListWithVotes(ctx context.Context, approved bool, viewerID string) ([]model.MovieView, error) {
	out := make([]model.MovieView, 0)
	for _, id := range r.order {
		m := r.movies[id]
		if m.Approved != approved {
			continue
		}
		v := model.MovieView{Movie: *m}
		if r.votes != nil {
			v.VoteCount, _ = r.votes.CountByMovie(ctx, id)
			_, err := r.votes.Get(ctx, id, viewerID)
			v.UserVote = err == nil
		}
		out = append(out, v)
	}
	return out, nil
}

// seed stores a movie directly, bypassing suggestion rules.
func (r *fakeMovieRepo) seed(m model.Movie) *model.Movie {
	if m.TitleKey == "" {
		m.TitleKey = TitleKey(m.Title)
	}
	r.movies[m.ID] = &m
	r.order = append(r.order, m.ID)
	return &m
}

type voteKey struct{ movieID, userID string }

type fakeVoteRepo struct {
	votes map[voteKey]*model.Vote
	// raceOnCreate simulates a concurrent request inserting the same vote
	// between our delete and insert.
	raceOnCreate bool
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{votes: make(map[voteKey]*model.Vote)}
}

func (r *fakeVoteRepo) Create(ctx context.Context, v *model.Vote) error {
	k := voteKey{v.MovieID, v.UserID}
	if r.raceOnCreate {
		r.raceOnCreate = false
		r.votes[k] = &model.Vote{ID: "concurrent", MovieID: v.MovieID, UserID: v.UserID, CreatedAt: time.Now().UTC()}
	}
	if _, ok := r.votes[k]; ok {
		return repository.ErrDuplicate
	}
	v.CreatedAt = time.Now().UTC()
	stored := *v
	r.votes[k] = &stored
	return nil
}

func (r *fakeVoteRepo) Get(ctx context.Context, movieID, userID string) (*model.Vote, error) {
	v, ok := r.votes[voteKey{movieID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *v
	return &out, nil
}

func (r *fakeVoteRepo) Delete(ctx context.Context, movieID, userID string) (bool, error) {
	k := voteKey{movieID, userID}
	if _, ok := r.votes[k]; !ok {
		return false, nil
	}
	delete(r.votes, k)
	return true, nil
}

func (r *fakeVoteRepo) CountByMovie(ctx context.Context, movieID string) (int, error) {
	n := 0
	for k := range r.votes {
		if k.movieID == movieID {
			n++
		}
	}
	return n, nil
}

type fakeScheduleRepo struct {
	movies    *fakeMovieRepo
	schedules map[string]*model.MovieSchedule
	seq       int
}

func newFakeScheduleRepo(movies *fakeMovieRepo) *fakeScheduleRepo {
	return &fakeScheduleRepo{movies: movies, schedules: make(map[string]*model.MovieSchedule)}
}

func (r *fakeScheduleRepo) Create(ctx context.Context, s *model.MovieSchedule) error {
	if _, ok := r.movies.movies[s.MovieID]; !ok {
		return repository.ErrMissingReference
	}
	r.seq++
	s.CreatedAt = time.Date(2025, 1, 1, 0, 0, r.seq, 0, time.UTC)
	stored := *s
	r.schedules[s.ID] = &stored
	return nil
}

func (r *fakeScheduleRepo) ExistsOnDate(ctx context.Context, day calendar.Day) (bool, error) {
	for _, s := range r.schedules {
		if s.Date == day {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeScheduleRepo) GetView(ctx context.Context, id string) (*model.ScheduleView, error) {
	s, ok := r.schedules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := r.view(s)
	return &v, nil
}

func (r *fakeScheduleRepo) List(ctx context.Context) ([]model.ScheduleView, error) {
	out := make([]model.ScheduleView, 0, len(r.schedules))
	for _, s := range r.schedules {
		out = append(out, r.view(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeScheduleRepo) ListByDate(ctx context.Context, day calendar.Day) ([]model.ScheduleView, error) {
	all, _ := r.List(ctx)
	out := make([]model.ScheduleView, 0)
	for _, v := range all {
		if v.Date == day {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := r.schedules[id]; !ok {
		return false, nil
	}
	delete(r.schedules, id)
	return true, nil
}

func (r *fakeScheduleRepo) view(s *model.MovieSchedule) model.ScheduleView {
	m := r.movies.movies[s.MovieID]
	return model.ScheduleView{
		ID:        s.ID,
		MovieID:   s.MovieID,
		Date:      s.Date,
		CreatedAt: s.CreatedAt,
		Movie:     model.ScheduleMovie{ID: m.ID, Title: m.Title, Description: m.Description, PosterURL: m.PosterURL},
	}
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Upsert(ctx context.Context, u *model.User) error {
	if existing, ok := r.users[u.ID]; ok {
		existing.Name, existing.IsAdmin = u.Name, u.IsAdmin
		*u = *existing
		return nil
	}
	u.CreatedAt = time.Now().UTC()
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

type fakeSession struct {
	userID  string
	expires time.Time
	revoked bool
}

type fakeSessionRepo struct {
	sessions map[string]*fakeSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*fakeSession)}
}

func (r *fakeSessionRepo) Store(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	r.sessions[tokenHash] = &fakeSession{userID: userID, expires: expiresAt}
	return nil
}

func (r *fakeSessionRepo) Validate(ctx context.Context, tokenHash string) (string, error) {
	s, ok := r.sessions[tokenHash]
	if !ok || s.revoked || time.Now().After(s.expires) {
		return "", repository.ErrNotFound
	}
	return s.userID, nil
}

func (r *fakeSessionRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	if s, ok := r.sessions[tokenHash]; ok {
		s.revoked = true
	}
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []queue.VoteEvent
}

func (n *recordingNotifier) NotifyVote(ev queue.VoteEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

var (
	alice = &model.Principal{UserID: "u-alice", DisplayName: "Alice"}
	bob   = &model.Principal{UserID: "u-bob", DisplayName: "Bob"}
	admin = &model.Principal{UserID: "u-admin", DisplayName: "Ada", IsAdmin: true}
)
