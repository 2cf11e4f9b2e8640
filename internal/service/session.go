package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movie-night/internal/model"
	"github.com/iliyamo/movie-night/internal/repository"
	"github.com/iliyamo/movie-night/internal/utils"
)

// SessionService turns identity provider assertions into server-side
// sessions and resolves session tokens back into principals.
type SessionService struct {
	users    repository.UserStore
	sessions repository.SessionStore
	secret   string
	ttl      time.Duration
}

func NewSessionService(users repository.UserStore, sessions repository.SessionStore, secret string, ttl time.Duration) *SessionService {
	return &SessionService{users: users, sessions: sessions, secret: secret, ttl: ttl}
}

// Exchange verifies the assertion, mirrors the user and issues a session.
func (s *SessionService) Exchange(ctx context.Context, assertion string) (utils.SessionToken, *model.User, error) {
	if strings.TrimSpace(assertion) == "" {
		return utils.SessionToken{}, nil, invalid("Assertion is required")
	}
	id, err := utils.ParseIdentityAssertion(s.secret, assertion)
	if err != nil {
		return utils.SessionToken{}, nil, errors.Join(ErrUnauthorized, err)
	}

	user := &model.User{ID: id.Subject, Name: id.Name, IsAdmin: id.IsAdmin}
	if err := s.users.Upsert(ctx, user); err != nil {
		return utils.SessionToken{}, nil, err
	}

	tok, err := utils.NewSessionToken(s.ttl)
	if err != nil {
		return utils.SessionToken{}, nil, err
	}
	if err := s.sessions.Store(ctx, user.ID, utils.HashSessionToken(tok.Raw), tok.Exp); err != nil {
		return utils.SessionToken{}, nil, err
	}
	return tok, user, nil
}

// Resolve returns the principal owning a live session token.
func (s *SessionService) Resolve(ctx context.Context, raw string) (*model.Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrUnauthorized
	}
	userID, err := s.sessions.Validate(ctx, utils.HashSessionToken(raw))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return &model.Principal{UserID: user.ID, DisplayName: user.Name, IsAdmin: user.IsAdmin}, nil
}

// Revoke ends the session identified by raw. Unknown tokens are ignored.
func (s *SessionService) Revoke(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return s.sessions.RevokeByHash(ctx, utils.HashSessionToken(raw))
}
