package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-night/internal/logger"
	"github.com/iliyamo/movie-night/internal/middleware"
	"github.com/iliyamo/movie-night/internal/model"
	"github.com/iliyamo/movie-night/internal/utils"
)

// Sessions issues and revokes sessions.
type Sessions interface {
	Exchange(ctx context.Context, assertion string) (utils.SessionToken, *model.User, error)
	Revoke(ctx context.Context, raw string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Sessions     Sessions
	CookieName   string
	CookieSecure bool
	log          logger.Logger
}

func NewAuthHandler(s Sessions, cookieName string, cookieSecure bool, log logger.Logger) *AuthHandler {
	return &AuthHandler{Sessions: s, CookieName: cookieName, CookieSecure: cookieSecure, log: log}
}

type sessionReq struct {
	Assertion string `json:"assertion"`
}

type sessionResp struct {
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
	Expires time.Time   `json:"expires"`
}

// CreateSession exchanges an identity provider assertion for a session.
// The token is set as an HttpOnly cookie and also returned for clients
// that prefer the Authorization header.
func (h *AuthHandler) CreateSession(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tok, user, err := h.Sessions.Exchange(ctx, req.Assertion)
	if err != nil {
		return respond(c, h.log, "auth.create_session", err)
	}
	c.SetCookie(h.cookie(tok.Raw, tok.Exp))
	h.log.Info("auth.create_session: signed in", "user_id", user.ID, "admin", user.IsAdmin)
	return c.JSON(http.StatusCreated, sessionResp{User: user, Token: tok.Raw, Expires: tok.Exp})
}

// DeleteSession signs the caller out.
func (h *AuthHandler) DeleteSession(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Sessions.Revoke(ctx, middleware.SessionToken(c, h.CookieName)); err != nil {
		return respond(c, h.log, "auth.delete_session", err)
	}
	c.SetCookie(h.cookie("", time.Unix(0, 0)))
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated caller.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.PrincipalFrom(c))
}

func (h *AuthHandler) cookie(value string, expires time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     h.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		ck.MaxAge = -1
	}
	return ck
}
