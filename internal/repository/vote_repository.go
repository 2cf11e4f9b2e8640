package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/movie-night/internal/model"
)

type VoteRepo struct{ db *sql.DB }

func NewVoteRepo(db *sql.DB) *VoteRepo { return &VoteRepo{db: db} }

// Create inserts a vote. A second vote by the same user on the same movie
// fails with ErrDuplicate; a vote on an unknown movie with
// ErrMissingReference.
func (r *VoteRepo) Create(ctx context.Context, v *model.Vote) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO votes (id, movie_id, user_id) VALUES (?,?,?)",
		v.ID, v.MovieID, v.UserID)
	if err != nil {
		return translate(err)
	}
	stored, err := r.Get(ctx, v.MovieID, v.UserID)
	if err != nil {
		return err
	}
	*v = *stored
	return nil
}

func (r *VoteRepo) Get(ctx context.Context, movieID, userID string) (*model.Vote, error) {
	var v model.Vote
	err := r.db.QueryRowContext(ctx,
		"SELECT id, movie_id, user_id, created_at FROM votes WHERE movie_id=? AND user_id=?",
		movieID, userID).Scan(&v.ID, &v.MovieID, &v.UserID, &v.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// Delete removes the user's vote and reports whether one existed.
func (r *VoteRepo) Delete(ctx context.Context, movieID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM votes WHERE movie_id=? AND user_id=?", movieID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *VoteRepo) CountByMovie(ctx context.Context, movieID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM votes WHERE movie_id=?", movieID).Scan(&n)
	return n, err
}
