package model

import "time"

// User mirrors the `users` table. Users are created on their first sign-in
// through the identity provider; the provider owns the display name and the
// admin flag.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session models an entry in the `sessions` table. Only the SHA-256 hex
// digest of the token handed to the client is stored.
type Session struct {
	ID        uint64
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Principal identifies the caller of a request. The zero value is an
// anonymous caller.
type Principal struct {
	UserID      string `json:"id"`
	DisplayName string `json:"name"`
	IsAdmin     bool   `json:"isAdmin"`
}

// Authenticated reports whether p refers to a signed-in user.
func (p *Principal) Authenticated() bool {
	return p != nil && p.UserID != ""
}

// Admin reports whether p is a signed-in administrator.
func (p *Principal) Admin() bool {
	return p.Authenticated() && p.IsAdmin
}
