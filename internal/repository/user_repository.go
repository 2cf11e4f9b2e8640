package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/movie-night/internal/model"
)

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Upsert inserts the user or refreshes name and admin flag from the
// identity provider, then reloads the stored row into u.
func (r *UserRepo) Upsert(ctx context.Context, u *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, is_admin) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE name=VALUES(name), is_admin=VALUES(is_admin)`,
		u.ID, u.Name, u.IsAdmin)
	if err != nil {
		return translate(err)
	}
	stored, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *stored
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id,name,is_admin,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
