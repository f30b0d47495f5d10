package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"predictably/internal/config"
	"predictably/internal/models"
	"predictably/internal/repository"
	"predictably/internal/stats"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrOutOfRange       = errors.New("value outside the vote scale")
	ErrVotingClosed     = errors.New("voting is closed for this question")
	ErrTextTooShort     = errors.New("question text too short")
	ErrBadTTL           = errors.New("ttl hours outside the allowed range")
)

// GameService is the boundary layer over the aggregate repository and the
// statistics engine: it validates inbound values against the scale, retries
// contended vote transactions a bounded number of times, and assembles the
// composite read models the API serves.
type GameService struct {
	Repo   repository.Repository
	Stats  *stats.Engine
	Config config.GameConfig
	Logger *zap.Logger
}

func (s *GameService) SubmitVote(ctx context.Context, userID, questionID string, value int) (*models.Vote, *models.VoteHistogram, error) {
	if value < models.ScaleMin || value > models.ScaleMax {
		return nil, nil, ErrOutOfRange
	}

	q, err := s.Repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}
	if q == nil {
		return nil, nil, ErrQuestionNotFound
	}
	if !q.IsActive {
		return nil, nil, ErrVotingClosed
	}

	vote := models.Vote{
		UserID:     userID,
		QuestionID: questionID,
		Value:      value,
		Timestamp:  time.Now().UTC(),
	}

	retries := s.Config.VoteRetries
	if retries < 1 {
		retries = 1
	}
	for attempt := 0; ; attempt++ {
		err = s.Repo.RecordVote(ctx, vote)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrVoteConflict) || attempt+1 >= retries {
			return nil, nil, err
		}
		if s.Logger != nil {
			s.Logger.Debug("vote transaction contended, retrying",
				zap.String("question_id", questionID),
				zap.Int("attempt", attempt+1),
			)
		}
	}

	if err := s.Repo.TouchUserData(ctx, userID, s.Config.UserDataTTL); err != nil && s.Logger != nil {
		s.Logger.Warn("refresh user data ttl failed", zap.Error(err))
	}

	histogram, err := s.Stats.BuildHistogram(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}
	return &vote, histogram, nil
}

func (s *GameService) SubmitPrediction(ctx context.Context, userID, questionID string, predicted decimal.Decimal) (*models.Prediction, *models.VoteHistogram, error) {
	min := decimal.NewFromInt(models.ScaleMin)
	max := decimal.NewFromInt(models.ScaleMax)
	if predicted.LessThan(min) || predicted.GreaterThan(max) {
		return nil, nil, ErrOutOfRange
	}

	q, err := s.Repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}
	if q == nil {
		return nil, nil, ErrQuestionNotFound
	}
	if !q.IsActive {
		return nil, nil, ErrVotingClosed
	}

	now := time.Now().UTC()
	if err := s.Repo.RecordPrediction(ctx, userID, questionID, predicted, now); err != nil {
		return nil, nil, err
	}
	if err := s.Repo.TouchUserData(ctx, userID, s.Config.UserDataTTL); err != nil && s.Logger != nil {
		s.Logger.Warn("refresh user data ttl failed", zap.Error(err))
	}

	accuracy, correct := stats.Evaluate(predicted, q.AverageVote)
	prediction := &models.Prediction{
		UserID:        userID,
		QuestionID:    questionID,
		Predicted:     predicted,
		ActualAverage: q.AverageVote,
		Accuracy:      accuracy,
		IsCorrect:     correct,
		Timestamp:     now,
	}

	histogram, err := s.Stats.BuildHistogram(ctx, questionID)
	if err != nil {
		return nil, nil, err
	}
	return prediction, histogram, nil
}

func (s *GameService) SubmitQuestion(ctx context.Context, userID, text string, ttlHours int) (*models.Question, error) {
	text = strings.TrimSpace(text)
	minLen := s.Config.MinQuestionLen
	if minLen <= 0 {
		minLen = 10
	}
	if len(text) < minLen {
		return nil, ErrTextTooShort
	}

	if ttlHours == 0 {
		ttlHours = s.Config.DefaultTTLHours
	}
	minTTL, maxTTL := s.Config.MinTTLHours, s.Config.MaxTTLHours
	if minTTL <= 0 {
		minTTL = 1
	}
	if maxTTL <= 0 {
		maxTTL = 168
	}
	if ttlHours < minTTL || ttlHours > maxTTL {
		return nil, ErrBadTTL
	}

	now := time.Now().UTC()
	closesAt := now.Add(time.Duration(ttlHours) * time.Hour)
	q := &models.Question{
		ID:          uuid.NewString(),
		Text:        text,
		CreatedAt:   now,
		AverageVote: decimal.Zero,
		IsActive:    true,
		SubmittedBy: userID,
		ClosesAt:    &closesAt,
	}
	if err := s.Repo.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// CloseQuestion flips a question inactive ahead of its deadline. Closing an
// already-closed question is a no-op.
func (s *GameService) CloseQuestion(ctx context.Context, questionID string) (*models.Question, error) {
	q, err := s.Repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	if q.IsActive {
		if err := s.Repo.SetQuestionActive(ctx, questionID, false); err != nil {
			return nil, err
		}
		q.IsActive = false
	}
	return q, nil
}

// QuestionDetails is the composite read model for one question: the caller's
// own vote and prediction when a user is known, plus the full histogram and
// raw vote/prediction lists.
type QuestionDetails struct {
	Question       *models.Question      `json:"question"`
	MyVote         *models.Vote          `json:"myVote,omitempty"`
	MyPrediction   *models.Prediction    `json:"myPrediction,omitempty"`
	Histogram      *models.VoteHistogram `json:"voteHistogram"`
	AllVotes       []models.Vote         `json:"allVotes"`
	AllPredictions []models.Prediction   `json:"allPredictions"`
}

func (s *GameService) QuestionDetails(ctx context.Context, userID, questionID string) (*QuestionDetails, error) {
	q, err := s.Repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}

	details := &QuestionDetails{Question: q}
	if userID != "" {
		if details.MyVote, err = s.Repo.GetUserVote(ctx, userID, questionID); err != nil {
			return nil, err
		}
		if details.MyPrediction, err = s.Repo.GetUserPrediction(ctx, userID, questionID); err != nil {
			return nil, err
		}
	}
	if details.Histogram, err = s.Stats.BuildHistogram(ctx, questionID); err != nil {
		return nil, err
	}
	if details.AllVotes, err = s.Repo.GetQuestionVotes(ctx, questionID); err != nil {
		return nil, err
	}
	if details.AllPredictions, err = s.Repo.GetQuestionPredictions(ctx, questionID); err != nil {
		return nil, err
	}
	return details, nil
}

// HistoryEntry is one question in a user's history with that user's own
// participation attached.
type HistoryEntry struct {
	Question     models.Question       `json:"question"`
	MyVote       *models.Vote          `json:"myVote,omitempty"`
	MyPrediction *models.Prediction    `json:"myPrediction,omitempty"`
	Histogram    *models.VoteHistogram `json:"voteHistogram"`
}

func (s *GameService) UserHistory(ctx context.Context, userID string, limit, offset int) ([]HistoryEntry, error) {
	questions, err := s.Repo.GetUserHistory(ctx, userID, repository.HistoryParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, 0, len(questions))
	for _, q := range questions {
		entry := HistoryEntry{Question: q}
		if entry.MyVote, err = s.Repo.GetUserVote(ctx, userID, q.ID); err != nil {
			return nil, err
		}
		if entry.MyPrediction, err = s.Repo.GetUserPrediction(ctx, userID, q.ID); err != nil {
			return nil, err
		}
		if entry.Histogram, err = s.Stats.BuildHistogram(ctx, q.ID); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// CurrentQuestion resolves the rotation marker for today's question. A
// missing marker or dangling id yields (nil, nil, nil).
func (s *GameService) CurrentQuestion(ctx context.Context, userID string) (*models.Question, *models.Vote, error) {
	id, err := s.Repo.GetTodayQuestionID(ctx)
	if err != nil || id == "" {
		return nil, nil, err
	}
	q, err := s.Repo.GetQuestion(ctx, id)
	if err != nil || q == nil {
		return nil, nil, err
	}
	var vote *models.Vote
	if userID != "" {
		if vote, err = s.Repo.GetUserVote(ctx, userID, id); err != nil {
			return nil, nil, err
		}
	}
	return q, vote, nil
}

// YesterdayResults resolves yesterday's question together with the caller's
// vote and (re-evaluated) prediction.
func (s *GameService) YesterdayResults(ctx context.Context, userID string) (*models.Question, *models.Vote, *models.Prediction, error) {
	id, err := s.Repo.GetYesterdayQuestionID(ctx)
	if err != nil || id == "" {
		return nil, nil, nil, err
	}
	q, err := s.Repo.GetQuestion(ctx, id)
	if err != nil || q == nil {
		return nil, nil, nil, err
	}
	var (
		vote       *models.Vote
		prediction *models.Prediction
	)
	if userID != "" {
		if vote, err = s.Repo.GetUserVote(ctx, userID, id); err != nil {
			return nil, nil, nil, err
		}
		if prediction, err = s.Repo.GetUserPrediction(ctx, userID, id); err != nil {
			return nil, nil, nil, err
		}
	}
	return q, vote, prediction, nil
}
