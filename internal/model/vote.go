package model

import "time"

const (
	VoteAdded   = "added"
	VoteRemoved = "removed"
)

// Vote mirrors the `votes` table; (MovieID, UserID) is unique.
type Vote struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movieId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// VoteResult is the outcome of a toggle. Vote is nil when the vote was removed.
type VoteResult struct {
	Action    string `json:"action"`
	Vote      *Vote  `json:"vote,omitempty"`
	VoteCount int    `json:"voteCount"`
}
