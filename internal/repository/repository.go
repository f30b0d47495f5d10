package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"predictably/internal/models"
)

// ErrVoteConflict reports that a vote-recording transaction was aborted
// because the question's vote map changed between watch and commit. The
// repository never retries; callers decide whether to.
var ErrVoteConflict = errors.New("vote transaction conflict")

// Repository owns all read/write access to question, vote, prediction and
// history records. Read paths return (nil, nil) for missing records; every
// other failure propagates to the caller untouched.
type Repository interface {
	// Questions.
	CreateQuestion(ctx context.Context, q *models.Question) error
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	GetQuestionsByIDs(ctx context.Context, ids []string) ([]models.Question, error)
	AllQuestionIDs(ctx context.Context) ([]string, error)
	DeleteQuestion(ctx context.Context, id string) error
	SetQuestionActive(ctx context.Context, id string, active bool) error
	CloseExpiredVoting(ctx context.Context, now time.Time) (models.CloseResult, error)

	// Today / yesterday rotation markers.
	SetTodayQuestionID(ctx context.Context, id string) error
	GetTodayQuestionID(ctx context.Context) (string, error)
	SetYesterdayQuestionID(ctx context.Context, id string) error
	GetYesterdayQuestionID(ctx context.Context) (string, error)

	// Votes.
	RecordVote(ctx context.Context, v models.Vote) error
	GetUserVote(ctx context.Context, userID, questionID string) (*models.Vote, error)
	GetQuestionVotes(ctx context.Context, questionID string) ([]models.Vote, error)
	GetVoteDistribution(ctx context.Context, questionID string) ([]models.VoteDistribution, error)

	// Predictions.
	RecordPrediction(ctx context.Context, userID, questionID string, predicted decimal.Decimal, ts time.Time) error
	GetUserPrediction(ctx context.Context, userID, questionID string) (*models.Prediction, error)
	GetQuestionPredictions(ctx context.Context, questionID string) ([]models.Prediction, error)

	// Per-user aggregates and indices.
	GetUserHistory(ctx context.Context, userID string, params HistoryParams) ([]models.Question, error)
	GetUserVoteCount(ctx context.Context, userID string) (int64, error)
	GetUserPredictionHistory(ctx context.Context, userID string) ([]string, error)
	GetUserPredictionValues(ctx context.Context, userID string) (map[string]decimal.Decimal, error)
	GetUserSubmissionCount(ctx context.Context, userID string) (int64, error)
	TouchUserData(ctx context.Context, userID string, ttl time.Duration) error
}

// HistoryParams paginates a user's time-ordered question history. A zero
// Limit means the full list.
type HistoryParams struct {
	Limit  int
	Offset int
}
