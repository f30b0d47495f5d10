package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"predictably/internal/models"
	"predictably/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository
// with just enough behavior for service tests: question lookup, vote
// recording with optional injected conflicts, and call counters.
type stubRepo struct {
	questions map[string]models.Question
	todayID   string

	created     []models.Question
	votes       []models.Vote
	predictions map[string]decimal.Decimal
	deleted     []string
	touched     int

	voteConflicts int
	closeResult   models.CloseResult
	closeCalls    int
}

func (s *stubRepo) CreateQuestion(ctx context.Context, q *models.Question) error {
	if s.questions == nil {
		s.questions = map[string]models.Question{}
	}
	s.questions[q.ID] = *q
	s.created = append(s.created, *q)
	return nil
}
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
func (s *stubRepo) AllQuestionIDs(ctx context.Context) ([]string, error) { return nil, nil }
func (s *stubRepo) DeleteQuestion(ctx context.Context, id string) error {
	delete(s.questions, id)
	s.deleted = append(s.deleted, id)
	return nil
}
func (s *stubRepo) SetQuestionActive(ctx context.Context, id string, active bool) error {
	q, ok := s.questions[id]
	if ok {
		q.IsActive = active
		s.questions[id] = q
	}
	return nil
}
func (s *stubRepo) CloseExpiredVoting(ctx context.Context, now time.Time) (models.CloseResult, error) {
	s.closeCalls++
	if s.closeCalls > 1 {
		return models.CloseResult{ClosedQuestions: []string{}}, nil
	}
	return s.closeResult, nil
}
func (s *stubRepo) SetTodayQuestionID(ctx context.Context, id string) error {
	s.todayID = id
	return nil
}
func (s *stubRepo) GetTodayQuestionID(ctx context.Context) (string, error) { return s.todayID, nil }
func (s *stubRepo) SetYesterdayQuestionID(ctx context.Context, id string) error { return nil }
func (s *stubRepo) GetYesterdayQuestionID(ctx context.Context) (string, error)  { return "", nil }
func (s *stubRepo) RecordVote(ctx context.Context, v models.Vote) error {
	if s.voteConflicts > 0 {
		s.voteConflicts--
		return repository.ErrVoteConflict
	}
	s.votes = append(s.votes, v)
	return nil
}
func (s *stubRepo) GetUserVote(ctx context.Context, userID, questionID string) (*models.Vote, error) {
	return nil, nil
}
func (s *stubRepo) GetQuestionVotes(ctx context.Context, questionID string) ([]models.Vote, error) {
	return nil, nil
}
func (s *stubRepo) GetVoteDistribution(ctx context.Context, questionID string) ([]models.VoteDistribution, error) {
	return nil, nil
}
func (s *stubRepo) RecordPrediction(ctx context.Context, userID, questionID string, predicted decimal.Decimal, ts time.Time) error {
	if s.predictions == nil {
		s.predictions = map[string]decimal.Decimal{}
	}
	s.predictions[userID+"/"+questionID] = predicted
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
	return 0, nil
}
func (s *stubRepo) GetUserPredictionHistory(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}
func (s *stubRepo) GetUserPredictionValues(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	return nil, nil
}
func (s *stubRepo) GetUserSubmissionCount(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}
func (s *stubRepo) TouchUserData(ctx context.Context, userID string, ttl time.Duration) error {
	s.touched++
	return nil
}

var _ repository.Repository = (*stubRepo)(nil)
