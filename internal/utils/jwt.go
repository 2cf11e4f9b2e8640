// Package utils provides helpers for identity assertions and session tokens.
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidAssertion is returned for assertions that are malformed,
// expired, signed with another key or missing required claims.
var ErrInvalidAssertion = errors.New("invalid identity assertion")

// IdentityClaims are the claims the identity provider puts into the
// short-lived assertion it hands to the browser after social login.
type IdentityClaims struct {
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Identity is a verified assertion.
type Identity struct {
	Subject string
	Name    string
	IsAdmin bool
}

// SessionToken is a freshly issued session. Raw is returned to the client
// once; only HashSessionToken(Raw) is persisted.
type SessionToken struct {
	Raw string
	Exp time.Time
}

// maxSubjectLength matches the width of users.id.
const maxSubjectLength = 255

// ParseIdentityAssertion verifies an HS256 assertion signed with secret and
// returns the identity it carries.
func ParseIdentityAssertion(secret, assertion string) (Identity, error) {
	var claims IdentityClaims
	tok, err := jwt.ParseWithClaims(strings.TrimSpace(assertion), &claims,
		func(t *jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return Identity{}, errors.Join(ErrInvalidAssertion, err)
	}
	sub := strings.TrimSpace(claims.Subject)
	name := strings.TrimSpace(claims.Name)
	if sub == "" || name == "" || utf8.RuneCountInString(sub) > maxSubjectLength {
		return Identity{}, ErrInvalidAssertion
	}
	return Identity{Subject: sub, Name: name, IsAdmin: claims.IsAdmin}, nil
}

// NewIdentityAssertion signs an assertion the way the identity provider
// does. The server never calls it; it exists for local tooling and tests.
func NewIdentityAssertion(secret string, id Identity, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := IdentityClaims{
		Name:    id.Name,
		IsAdmin: id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// NewSessionToken returns a cryptographically secure random token and its
// expiration time.
func NewSessionToken(ttl time.Duration) (SessionToken, error) {
	raw, err := randomHex(32)
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Raw: raw, Exp: time.Now().UTC().Add(ttl)}, nil
}

// HashSessionToken returns the SHA-256 hex digest of a raw session token.
func HashSessionToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
