package model

import "time"

// Movie is a suggestion. TitleKey is the normalized base title used for
// duplicate detection; Title may carry a " (N)" suffix when earlier
// suggestions of the same title were already approved.
type Movie struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	TitleKey          string    `json:"-"`
	Description       string    `json:"description"`
	PosterURL         string    `json:"posterUrl"`
	SuggestedBy       string    `json:"suggestedBy"`
	SuggestedByUserID string    `json:"-"`
	Approved          bool      `json:"approved"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MovieView is a movie as seen by one viewer.
type MovieView struct {
	Movie
	VoteCount       int  `json:"voteCount"`
	UserVote        bool `json:"userVote"`
	IsOwnSubmission bool `json:"isOwnSubmission"`
}
