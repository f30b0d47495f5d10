package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"predictably/internal/models"
	"predictably/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// It implements the full interface but only the read paths the stats engine
// touches are backed by data.
type stubRepo struct {
	questions       map[string]models.Question
	distributions   map[string][]models.VoteDistribution
	voteCounts      map[string]int64
	predictionOrder map[string][]string
	predictions     map[string]map[string]decimal.Decimal
	submissions     map[string]int64
}

func (s *stubRepo) CreateQuestion(ctx context.Context, q *models.Question) error { return nil }
func (s *stubRepo) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	q, ok := s.questions[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}
func (s *stubRepo) GetQuestionsByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	out := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := s.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}
func (s *stubRepo) AllQuestionIDs(ctx context.Context) ([]string, error)          { return nil, nil }
func (s *stubRepo) DeleteQuestion(ctx context.Context, id string) error           { return nil }
func (s *stubRepo) SetQuestionActive(ctx context.Context, id string, active bool) error {
	return nil
}
func (s *stubRepo) CloseExpiredVoting(ctx context.Context, now time.Time) (models.CloseResult, error) {
	return models.CloseResult{}, nil
}
func (s *stubRepo) SetTodayQuestionID(ctx context.Context, id string) error     { return nil }
func (s *stubRepo) GetTodayQuestionID(ctx context.Context) (string, error)      { return "", nil }
func (s *stubRepo) SetYesterdayQuestionID(ctx context.Context, id string) error { return nil }
func (s *stubRepo) GetYesterdayQuestionID(ctx context.Context) (string, error)  { return "", nil }
func (s *stubRepo) RecordVote(ctx context.Context, v models.Vote) error         { return nil }
func (s *stubRepo) GetUserVote(ctx context.Context, userID, questionID string) (*models.Vote, error) {
	return nil, nil
}
func (s *stubRepo) GetQuestionVotes(ctx context.Context, questionID string) ([]models.Vote, error) {
	return nil, nil
}
func (s *stubRepo) GetVoteDistribution(ctx context.Context, questionID string) ([]models.VoteDistribution, error) {
	return s.distributions[questionID], nil
}
func (s *stubRepo) RecordPrediction(ctx context.Context, userID, questionID string, predicted decimal.Decimal, ts time.Time) error {
	return nil
}
func (s *stubRepo) GetUserPrediction(ctx context.Context, userID, questionID string) (*models.Prediction, error) {
	return nil, nil
}
func (s *stubRepo) GetQuestionPredictions(ctx context.Context, questionID string) ([]models.Prediction, error) {
	return nil, nil
}
func (s *stubRepo) GetUserHistory(ctx context.Context, userID string, params repository.HistoryParams) ([]models.Question, error) {
	return nil, nil
}
func (s *stubRepo) GetUserVoteCount(ctx context.Context, userID string) (int64, error) {
	return s.voteCounts[userID], nil
}
func (s *stubRepo) GetUserPredictionHistory(ctx context.Context, userID string) ([]string, error) {
	return s.predictionOrder[userID], nil
}
func (s *stubRepo) GetUserPredictionValues(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	return s.predictions[userID], nil
}
func (s *stubRepo) GetUserSubmissionCount(ctx context.Context, userID string) (int64, error) {
	return s.submissions[userID], nil
}
func (s *stubRepo) TouchUserData(ctx context.Context, userID string, ttl time.Duration) error {
	return nil
}

var _ repository.Repository = (*stubRepo)(nil)
