package service

import (
	"context"
	"sort"

	"predictably/internal/models"
)

// ListQuestions returns every known question, newest first.
func (s *GameService) ListQuestions(ctx context.Context) ([]models.Question, error) {
	ids, err := s.Repo.AllQuestionIDs(ctx)
	if err != nil {
		return nil, err
	}
	questions, err := s.Repo.GetQuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].CreatedAt.After(questions[j].CreatedAt)
	})
	return questions, nil
}

// RotateQuestions moves the current daily marker to yesterday and installs a
// new question as today's. Either id may be empty to clear the slot.
func (s *GameService) RotateQuestions(ctx context.Context, todayID string) error {
	current, err := s.Repo.GetTodayQuestionID(ctx)
	if err != nil {
		return err
	}
	if current != "" {
		if err := s.Repo.SetYesterdayQuestionID(ctx, current); err != nil {
			return err
		}
	}
	return s.Repo.SetTodayQuestionID(ctx, todayID)
}

func (s *GameService) SetTodayQuestion(ctx context.Context, questionID string) error {
	if questionID != "" {
		q, err := s.Repo.GetQuestion(ctx, questionID)
		if err != nil {
			return err
		}
		if q == nil {
			return ErrQuestionNotFound
		}
	}
	return s.Repo.SetTodayQuestionID(ctx, questionID)
}

func (s *GameService) SetYesterdayQuestion(ctx context.Context, questionID string) error {
	if questionID != "" {
		q, err := s.Repo.GetQuestion(ctx, questionID)
		if err != nil {
			return err
		}
		if q == nil {
			return ErrQuestionNotFound
		}
	}
	return s.Repo.SetYesterdayQuestionID(ctx, questionID)
}

// PurgeQuestion removes a question and every aggregate keyed under it. The
// repository delete is best effort; partial failures come back as a combined
// error with the reachable keys already gone.
func (s *GameService) PurgeQuestion(ctx context.Context, questionID string) error {
	q, err := s.Repo.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if q == nil {
		return ErrQuestionNotFound
	}
	return s.Repo.DeleteQuestion(ctx, questionID)
}
