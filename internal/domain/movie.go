package domain

import "time"

// Movie represents the canonical movie entity in the database/service.
// Score is the arithmetic mean of all accepted submissions; Count is how
// many submissions have been folded into it. A movie with no submissions
// carries Score 0 and Count 0.
type Movie struct {
	ID        int64
	Title     string
	Image     string
	Score     float64
	Count     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScoreSubmission is one audience score for one movie. It exists only for
// the duration of a request; only its effect on the movie aggregate is kept.
type ScoreSubmission struct {
	MovieID int64
	Score   float64
}
