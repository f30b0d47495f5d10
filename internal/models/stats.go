package models

import "github.com/shopspring/decimal"

// HistogramBucket covers a single scale value.
type HistogramBucket struct {
	Value int   `json:"value"`
	Count int64 `json:"count"`
}

// VoteHistogram is the dense form of a vote distribution: one bucket for
// every integer on the scale, zero-count buckets included.
type VoteHistogram struct {
	Buckets     []HistogramBucket `json:"buckets"`
	TotalVotes  int64             `json:"totalVotes"`
	AverageVote decimal.Decimal   `json:"averageVote"`
}

// UserStats aggregates a user's full vote and prediction history. Derived on
// demand, never stored.
type UserStats struct {
	TotalVotes                int64           `json:"totalVotes"`
	TotalPredictions          int64           `json:"totalPredictions"`
	CorrectPredictions        int64           `json:"correctPredictions"`
	QuestionsSubmitted        int64           `json:"questionsSubmitted"`
	PredictionAccuracy        decimal.Decimal `json:"predictionAccuracy"`
	AveragePredictionAccuracy decimal.Decimal `json:"averagePredictionAccuracy"`
	CurrentStreak             int             `json:"currentStreak"`
	BestStreak                int             `json:"bestStreak"`
}
