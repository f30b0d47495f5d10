package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"predictably/internal/config"
	"predictably/internal/models"
	"predictably/internal/repository"
	"predictably/internal/stats"
)

func newGameService(repo *stubRepo) *GameService {
	return &GameService{
		Repo:  repo,
		Stats: &stats.Engine{Repo: repo},
		Config: config.GameConfig{
			DefaultTTLHours: 24,
			MaxTTLHours:     168,
			MinTTLHours:     1,
			MinQuestionLen:  10,
			VoteRetries:     3,
		},
	}
}

func activeQuestion(id string) models.Question {
	return models.Question{ID: id, Text: "was today better than yesterday?", IsActive: true}
}

func TestSubmitVoteRejectsOutOfRange(t *testing.T) {
	svc := newGameService(&stubRepo{})
	for _, value := range []int{-11, 11, 100} {
		if _, _, err := svc.SubmitVote(context.Background(), "u1", "q1", value); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("value %d: err=%v want ErrOutOfRange", value, err)
		}
	}
}

func TestSubmitVoteUnknownQuestion(t *testing.T) {
	svc := newGameService(&stubRepo{})
	if _, _, err := svc.SubmitVote(context.Background(), "u1", "missing", 0); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err=%v want ErrQuestionNotFound", err)
	}
}

func TestSubmitVoteClosedQuestion(t *testing.T) {
	repo := &stubRepo{questions: map[string]models.Question{
		"q1": {ID: "q1", Text: "t", IsActive: false},
	}}
	svc := newGameService(repo)
	if _, _, err := svc.SubmitVote(context.Background(), "u1", "q1", 3); !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("err=%v want ErrVotingClosed", err)
	}
}

func TestSubmitVoteRetriesConflicts(t *testing.T) {
	repo := &stubRepo{
		questions:     map[string]models.Question{"q1": activeQuestion("q1")},
		voteConflicts: 2,
	}
	svc := newGameService(repo)

	vote, hist, err := svc.SubmitVote(context.Background(), "u1", "q1", 7)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if vote == nil || vote.Value != 7 {
		t.Fatalf("vote=%+v", vote)
	}
	if hist == nil {
		t.Fatalf("histogram missing")
	}
	if len(repo.votes) != 1 {
		t.Fatalf("recorded votes=%d want 1", len(repo.votes))
	}
	if repo.touched != 1 {
		t.Fatalf("touch calls=%d want 1", repo.touched)
	}
}

func TestSubmitVoteGivesUpAfterRetries(t *testing.T) {
	repo := &stubRepo{
		questions:     map[string]models.Question{"q1": activeQuestion("q1")},
		voteConflicts: 5,
	}
	svc := newGameService(repo)

	if _, _, err := svc.SubmitVote(context.Background(), "u1", "q1", 7); !errors.Is(err, repository.ErrVoteConflict) {
		t.Fatalf("err=%v want ErrVoteConflict", err)
	}
}

func TestSubmitPredictionRejectsOutOfRange(t *testing.T) {
	svc := newGameService(&stubRepo{})
	for _, raw := range []string{"-10.5", "10.01", "99"} {
		predicted, _ := decimal.NewFromString(raw)
		if _, _, err := svc.SubmitPrediction(context.Background(), "u1", "q1", predicted); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("predicted %s: err=%v want ErrOutOfRange", raw, err)
		}
	}
}

func TestSubmitPredictionScoresAgainstCurrentAverage(t *testing.T) {
	q := activeQuestion("q1")
	q.TotalVotes = 3
	q.VoteSum = 6
	q.AverageVote = models.Average(q.VoteSum, q.TotalVotes)
	repo := &stubRepo{questions: map[string]models.Question{"q1": q}}
	svc := newGameService(repo)

	prediction, _, err := svc.SubmitPrediction(context.Background(), "u1", "q1", decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !prediction.Accuracy.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("accuracy=%s want 1", prediction.Accuracy)
	}
	if !prediction.IsCorrect {
		t.Fatalf("expected correct prediction")
	}
	if len(repo.predictions) != 1 {
		t.Fatalf("stored predictions=%d want 1", len(repo.predictions))
	}
}

func TestSubmitQuestionValidation(t *testing.T) {
	svc := newGameService(&stubRepo{})
	ctx := context.Background()

	if _, err := svc.SubmitQuestion(ctx, "u1", "short", 0); !errors.Is(err, ErrTextTooShort) {
		t.Fatalf("err=%v want ErrTextTooShort", err)
	}
	if _, err := svc.SubmitQuestion(ctx, "u1", "   padded but still short   ", 200); !errors.Is(err, ErrBadTTL) {
		t.Fatalf("err=%v want ErrBadTTL", err)
	}
	if _, err := svc.SubmitQuestion(ctx, "u1", "a perfectly fine question", -1); !errors.Is(err, ErrBadTTL) {
		t.Fatalf("err=%v want ErrBadTTL", err)
	}
}

func TestSubmitQuestionDefaults(t *testing.T) {
	repo := &stubRepo{}
	svc := newGameService(repo)

	q, err := svc.SubmitQuestion(context.Background(), "u1", "  was today better than yesterday?  ", 0)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if q.ID == "" {
		t.Fatalf("missing id")
	}
	if q.Text != "was today better than yesterday?" {
		t.Fatalf("text=%q not trimmed", q.Text)
	}
	if !q.IsActive {
		t.Fatalf("expected active")
	}
	if q.SubmittedBy != "u1" {
		t.Fatalf("submitted_by=%q", q.SubmittedBy)
	}
	if q.ClosesAt == nil {
		t.Fatalf("missing closes_at")
	}
	if got := q.ClosesAt.Sub(q.CreatedAt); got != 24*time.Hour {
		t.Fatalf("ttl=%v want 24h", got)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created=%d want 1", len(repo.created))
	}
}

func TestCloseQuestionIdempotent(t *testing.T) {
	repo := &stubRepo{questions: map[string]models.Question{"q1": activeQuestion("q1")}}
	svc := newGameService(repo)
	ctx := context.Background()

	q, err := svc.CloseQuestion(ctx, "q1")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if q.IsActive {
		t.Fatalf("expected inactive after close")
	}

	q, err = svc.CloseQuestion(ctx, "q1")
	if err != nil {
		t.Fatalf("second close: %v", err)
	}
	if q.IsActive {
		t.Fatalf("expected inactive after second close")
	}
}

func TestPurgeQuestion(t *testing.T) {
	repo := &stubRepo{questions: map[string]models.Question{"q1": activeQuestion("q1")}}
	svc := newGameService(repo)

	if err := svc.PurgeQuestion(context.Background(), "q1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "q1" {
		t.Fatalf("deleted=%v", repo.deleted)
	}
	if err := svc.PurgeQuestion(context.Background(), "q1"); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err=%v want ErrQuestionNotFound", err)
	}
}

func TestCurrentQuestionEmptyMarker(t *testing.T) {
	svc := newGameService(&stubRepo{})
	q, vote, err := svc.CurrentQuestion(context.Background(), "u1")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if q != nil || vote != nil {
		t.Fatalf("expected nils, got %v %v", q, vote)
	}
}

func TestCurrentQuestion(t *testing.T) {
	repo := &stubRepo{
		questions: map[string]models.Question{"q1": activeQuestion("q1")},
		todayID:   "q1",
	}
	svc := newGameService(repo)

	q, _, err := svc.CurrentQuestion(context.Background(), "u1")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if q == nil || q.ID != "q1" {
		t.Fatalf("question=%+v", q)
	}
}
