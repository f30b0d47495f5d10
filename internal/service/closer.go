package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"predictably/internal/models"
	"predictably/internal/repository"
)

// VotingCloser sweeps the closing index and flips questions whose deadline
// has passed to inactive. The sweep is stateless and idempotent: a question
// closed by one run is skipped by the next.
type VotingCloser struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (c *VotingCloser) RunOnce(ctx context.Context, now time.Time) (models.CloseResult, error) {
	res, err := c.Repo.CloseExpiredVoting(ctx, now)
	if err != nil {
		if c.Logger != nil {
			c.Logger.Error("close voting sweep failed", zap.Error(err))
		}
		return res, err
	}
	if c.Logger != nil && res.ClosedCount > 0 {
		c.Logger.Info("closed expired voting",
			zap.Int("count", res.ClosedCount),
			zap.Strings("question_ids", res.ClosedQuestions),
		)
	}
	return res, nil
}

// Run is the cron entrypoint.
func (c *VotingCloser) Run(ctx context.Context) {
	if _, err := c.RunOnce(ctx, time.Now().UTC()); err != nil && c.Logger != nil {
		c.Logger.Warn("scheduled voting sweep returned error", zap.Error(err))
	}
}
