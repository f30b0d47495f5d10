package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scale bounds shared by votes and predictions, and the maximum distance a
// prediction may be from the actual average to still count as correct.
const (
	ScaleMin = -10
	ScaleMax = 10

	CorrectThreshold = 2
)

// Question is one statement open for (or closed to) voting. AverageVote is
// derived from the stored running sum and count, never stored itself.
type Question struct {
	ID          string          `json:"id"`
	Text        string          `json:"text"`
	CreatedAt   time.Time       `json:"createdAt"`
	TotalVotes  int64           `json:"totalVotes"`
	VoteSum     int64           `json:"-"`
	AverageVote decimal.Decimal `json:"averageVote"`
	IsActive    bool            `json:"isActive"`
	SubmittedBy string          `json:"submittedBy,omitempty"`
	ClosesAt    *time.Time      `json:"closesAt,omitempty"`
}

// Average returns sum/count on the vote scale, zero for a question nobody
// has voted on.
func Average(voteSum, totalVotes int64) decimal.Decimal {
	if totalVotes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(voteSum).Div(decimal.NewFromInt(totalVotes))
}

// CloseResult summarizes one closing sweep.
type CloseResult struct {
	ClosedCount     int      `json:"closedCount"`
	ClosedQuestions []string `json:"closedQuestions"`
}
