// Package queue carries vote notifications: events are buffered by a
// Dispatcher, published to RabbitMQ and delivered to a chat webhook by a
// Consumer.
package queue

import (
	"fmt"
	"time"
)

const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// VoteEvent is published after a vote is added or removed. It holds enough
// to render a chat message without querying the database.
type VoteEvent struct {
	Action     string    `json:"action"`
	MovieID    string    `json:"movie_id"`
	MovieTitle string    `json:"movie_title"`
	VoterID    string    `json:"voter_id"`
	VoterName  string    `json:"voter_name"`
	VoteCount  int       `json:"vote_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Text renders the event as a one-line chat message.
func (e VoteEvent) Text() string {
	votes := "votes"
	if e.VoteCount == 1 {
		votes = "vote"
	}
	if e.Action == ActionRemoved {
		return fmt.Sprintf("%s withdrew their vote for %q (%d %s)", e.VoterName, e.MovieTitle, e.VoteCount, votes)
	}
	return fmt.Sprintf("%s voted for %q (%d %s)", e.VoterName, e.MovieTitle, e.VoteCount, votes)
}
