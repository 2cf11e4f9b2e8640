package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/movie-night/internal/model"
)

const movieColumns = `m.id, m.title, m.title_key, m.description, m.poster_url,
	m.suggested_by, m.suggested_by_user_id, m.approved, m.created_at, m.updated_at`

// MovieRepo manages persistence for movie suggestions.
type MovieRepo struct {
	db   *sql.DB
	conn dbtx
}

func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db, conn: db}
}

// Transaction runs fn with a MovieRepo bound to a new transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (r *MovieRepo) Transaction(ctx context.Context, fn func(MovieStore) error) error {
	if _, ok := r.conn.(*sql.Tx); ok {
		return fn(r)
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&MovieRepo{db: r.db, conn: tx})
	})
}

func (r *MovieRepo) CountByTitleKey(ctx context.Context, titleKey string, approved bool) (int, error) {
	var n int
	err := r.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM movies WHERE title_key=? AND approved=? FOR UPDATE",
		titleKey, approved).Scan(&n)
	return n, translate(err)
}

// Create inserts m and reloads it so that timestamps reflect the stored row.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO movies (id, title, title_key, description, poster_url, suggested_by, suggested_by_user_id, approved)
		 VALUES (?,?,?,?,?,?,?,?)`,
		m.ID, m.Title, m.TitleKey, m.Description, m.PosterURL, m.SuggestedBy,
		nullString(m.SuggestedByUserID), m.Approved)
	if err != nil {
		return translate(err)
	}
	stored, err := r.GetByID(ctx, m.ID)
	if err != nil {
		return err
	}
	*m = *stored
	return nil
}

func (r *MovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	row := r.conn.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies m WHERE m.id=?", id)
	m, err := scanMovie(row)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

// Approve marks the movie approved. Approving an approved movie is a no-op.
func (r *MovieRepo) Approve(ctx context.Context, id string) (*model.Movie, error) {
	if _, err := r.conn.ExecContext(ctx,
		"UPDATE movies SET approved=TRUE WHERE id=? AND approved=FALSE", id); err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

// ListWithVotes returns movies in the given approval state with their vote
// totals, most voted first. UserVote is set for viewerID's votes.
func (r *MovieRepo) ListWithVotes(ctx context.Context, approved bool, viewerID string) ([]model.MovieView, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+movieColumns+`,
		        COUNT(v.id) AS vote_count,
		        COALESCE(SUM(v.user_id = ?), 0) AS user_votes
		   FROM movies m
		   LEFT JOIN votes v ON v.movie_id = m.id
		  WHERE m.approved = ?
		  GROUP BY m.id
		  ORDER BY vote_count DESC, m.created_at ASC`,
		viewerID, approved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.MovieView, 0)
	for rows.Next() {
		var (
			v         model.MovieView
			userID    sql.NullString
			userVotes int
		)
		if err := rows.Scan(&v.ID, &v.Title, &v.TitleKey, &v.Description, &v.PosterURL,
			&v.SuggestedBy, &userID, &v.Approved, &v.CreatedAt, &v.UpdatedAt,
			&v.VoteCount, &userVotes); err != nil {
			return nil, err
		}
		v.SuggestedByUserID = userID.String
		v.UserVote = userVotes > 0
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*model.Movie, error) {
	var (
		m      model.Movie
		userID sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Title, &m.TitleKey, &m.Description, &m.PosterURL,
		&m.SuggestedBy, &userID, &m.Approved, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.SuggestedByUserID = userID.String
	return &m, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
