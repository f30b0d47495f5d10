package models

import "time"

// Vote is one user's opinion value for one question. At most one per
// (user, question) pair; a re-vote overwrites the previous value.
type Vote struct {
	UserID     string    `json:"userId"`
	QuestionID string    `json:"questionId"`
	Value      int       `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// VoteDistribution is one (value, count) pair of a question's vote spread.
// Only values with at least one vote appear in a distribution; histograms
// densify it over the full scale.
type VoteDistribution struct {
	Value int   `json:"value"`
	Count int64 `json:"count"`
}
