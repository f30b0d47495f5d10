package stats

import (
	"context"

	"github.com/shopspring/decimal"

	"predictably/internal/models"
	"predictably/internal/repository"
)

var hundred = decimal.NewFromInt(100)

// Engine derives histograms and user aggregates from repository data on
// demand. It only reads.
type Engine struct {
	Repo repository.Repository
}

// BuildHistogram densifies a question's vote distribution into one bucket
// per scale value, zero counts included. Returns (nil, nil) for an unknown
// question.
func (e *Engine) BuildHistogram(ctx context.Context, questionID string) (*models.VoteHistogram, error) {
	q, err := e.Repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, nil
	}

	dist, err := e.Repo.GetVoteDistribution(ctx, questionID)
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int64, len(dist))
	for _, d := range dist {
		counts[d.Value] = d.Count
	}

	buckets := make([]models.HistogramBucket, 0, models.ScaleMax-models.ScaleMin+1)
	for value := models.ScaleMin; value <= models.ScaleMax; value++ {
		buckets = append(buckets, models.HistogramBucket{
			Value: value,
			Count: counts[value],
		})
	}

	return &models.VoteHistogram{
		Buckets:     buckets,
		TotalVotes:  q.TotalVotes,
		AverageVote: q.AverageVote,
	}, nil
}

// ComputeUserStats replays the user's full vote and prediction history.
// Every prediction is re-evaluated against its question's current average,
// so results shift while voting on those questions remains open. The streak
// walk follows the user's time-ordered prediction index: the counter resets
// on an incorrect prediction, bestStreak tracks the maximum, and
// currentStreak is the trailing run at the end of the walk.
func (e *Engine) ComputeUserStats(ctx context.Context, userID string) (models.UserStats, error) {
	out := models.UserStats{
		PredictionAccuracy:        decimal.Zero,
		AveragePredictionAccuracy: decimal.Zero,
	}

	voteCount, err := e.Repo.GetUserVoteCount(ctx, userID)
	if err != nil {
		return out, err
	}
	out.TotalVotes = voteCount

	predicted, err := e.Repo.GetUserPredictionValues(ctx, userID)
	if err != nil {
		return out, err
	}
	out.TotalPredictions = int64(len(predicted))

	order, err := e.Repo.GetUserPredictionHistory(ctx, userID)
	if err != nil {
		return out, err
	}

	accuracySum := decimal.Zero
	tempStreak := 0
	for _, questionID := range order {
		value, ok := predicted[questionID]
		if !ok {
			continue
		}
		q, err := e.Repo.GetQuestion(ctx, questionID)
		if err != nil {
			return out, err
		}
		if q == nil {
			continue
		}

		accuracy, correct := Evaluate(value, q.AverageVote)
		accuracySum = accuracySum.Add(accuracy)
		if correct {
			out.CorrectPredictions++
			tempStreak++
			if tempStreak > out.BestStreak {
				out.BestStreak = tempStreak
			}
		} else {
			tempStreak = 0
		}
	}
	out.CurrentStreak = tempStreak

	if out.TotalPredictions > 0 {
		total := decimal.NewFromInt(out.TotalPredictions)
		out.AveragePredictionAccuracy = accuracySum.Div(total)
		out.PredictionAccuracy = decimal.NewFromInt(out.CorrectPredictions).Mul(hundred).Div(total)
	}

	submitted, err := e.Repo.GetUserSubmissionCount(ctx, userID)
	if err != nil {
		return out, err
	}
	out.QuestionsSubmitted = submitted

	return out, nil
}
