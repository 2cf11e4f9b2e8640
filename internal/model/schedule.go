package model

import (
	"time"

	"github.com/iliyamo/movie-night/internal/calendar"
)

// MovieSchedule assigns a movie to a calendar day.
type MovieSchedule struct {
	ID        string
	MovieID   string
	Date      calendar.Day
	CreatedBy string
	CreatedAt time.Time
}

// ScheduleMovie is the part of a movie shown next to a schedule entry.
type ScheduleMovie struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PosterURL   string `json:"posterUrl"`
}

// ScheduleView is a schedule entry joined with its movie.
type ScheduleView struct {
	ID        string        `json:"id"`
	MovieID   string        `json:"movieId"`
	Date      calendar.Day  `json:"date"`
	CreatedAt time.Time     `json:"createdAt"`
	Movie     ScheduleMovie `json:"movie"`
}
