// Package redisrepo implements repository.Repository on a Redis node.
//
// Layout: per-question metadata hash plus vote/prediction hashes keyed by
// user, per-user mirrors keyed by question, time-ordered zset indices for
// history and closing deadlines, and a global set of question ids. All
// numeric fields are stored as strings; parsing defaults missing numbers
// to 0 and missing flags to false.
package redisrepo

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"predictably/internal/models"
	"predictably/internal/repository"
	"predictably/internal/stats"
)

const (
	todayQuestionKey     = "question:today:id"
	yesterdayQuestionKey = "question:yesterday:id"
	allQuestionsKey      = "questions:all"
	closingIndexKey      = "questions:closing"
)

func keyQuestionMeta(id string) string        { return "question:" + id + ":meta" }
func keyQuestionVotes(id string) string       { return "question:" + id + ":votes" }
func keyQuestionPredictions(id string) string { return "question:" + id + ":predictions" }
func keyUserVotes(userID string) string       { return "user:" + userID + ":votes" }
func keyUserPredictions(userID string) string { return "user:" + userID + ":predictions" }
func keyUserHistory(userID string) string     { return "user:" + userID + ":history" }
func keyUserPredHistory(userID string) string { return "user:" + userID + ":prediction-history" }
func keyUserSubmissions(userID string) string { return "user:" + userID + ":submissions" }

type Repository struct {
	client *redis.Client
}

var _ repository.Repository = (*Repository)(nil)

func New(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// ===== Questions =====

func (r *Repository) CreateQuestion(ctx context.Context, q *models.Question) error {
	fields := map[string]interface{}{
		"id":          q.ID,
		"text":        q.Text,
		"created_at":  q.CreatedAt.UTC().Format(time.RFC3339),
		"total_votes": strconv.FormatInt(q.TotalVotes, 10),
		"vote_sum":    strconv.FormatInt(q.VoteSum, 10),
		"is_active":   boolField(q.IsActive),
	}
	if q.SubmittedBy != "" {
		fields["submitted_by"] = q.SubmittedBy
	}
	if q.ClosesAt != nil {
		fields["closes_at"] = q.ClosesAt.UTC().Format(time.RFC3339)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, keyQuestionMeta(q.ID), fields)
		pipe.SAdd(ctx, allQuestionsKey, q.ID)
		if q.ClosesAt != nil {
			pipe.ZAdd(ctx, closingIndexKey, &redis.Z{
				Score:  float64(q.ClosesAt.UnixMilli()),
				Member: q.ID,
			})
		}
		if q.SubmittedBy != "" {
			pipe.ZAdd(ctx, keyUserSubmissions(q.SubmittedBy), &redis.Z{
				Score:  float64(q.CreatedAt.UnixMilli()),
				Member: q.ID,
			})
		}
		return nil
	})
	return err
}

func (r *Repository) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	data, err := r.client.HGetAll(ctx, keyQuestionMeta(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return parseQuestion(id, data), nil
}

func (r *Repository) GetQuestionsByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cmds := make([]*redis.StringStringMapCmd, len(ids))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, keyQuestionMeta(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Question, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}
		out = append(out, *parseQuestion(ids[i], data))
	}
	return out, nil
}

func (r *Repository) AllQuestionIDs(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, allQuestionsKey).Result()
}

// DeleteQuestion removes the question and every dependent record. All
// sub-deletes are attempted even when one fails; the combined error is
// returned.
func (r *Repository) DeleteQuestion(ctx context.Context, id string) error {
	submitter, err := r.client.HGet(ctx, keyQuestionMeta(id), "submitted_by").Result()
	if err != nil && err != redis.Nil {
		return err
	}

	var errs error
	errs = multierr.Append(errs, r.client.Del(ctx,
		keyQuestionMeta(id),
		keyQuestionVotes(id),
		keyQuestionPredictions(id),
	).Err())
	errs = multierr.Append(errs, r.client.SRem(ctx, allQuestionsKey, id).Err())
	errs = multierr.Append(errs, r.client.ZRem(ctx, closingIndexKey, id).Err())
	if submitter != "" {
		errs = multierr.Append(errs, r.client.ZRem(ctx, keyUserSubmissions(submitter), id).Err())
	}
	return errs
}

func (r *Repository) SetQuestionActive(ctx context.Context, id string, active bool) error {
	return r.client.HSet(ctx, keyQuestionMeta(id), "is_active", boolField(active)).Err()
}

// CloseExpiredVoting flips every still-active question whose closing
// deadline is at or before now, and drops each processed entry from the
// closing index so it is swept at most once.
func (r *Repository) CloseExpiredVoting(ctx context.Context, now time.Time) (models.CloseResult, error) {
	result := models.CloseResult{ClosedQuestions: []string{}}

	due, err := r.client.ZRangeByScore(ctx, closingIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return result, err
	}

	for _, id := range due {
		active, err := r.client.HGet(ctx, keyQuestionMeta(id), "is_active").Result()
		if err != nil && err != redis.Nil {
			return result, err
		}
		if active == "1" {
			if err := r.client.HSet(ctx, keyQuestionMeta(id), "is_active", "0").Err(); err != nil {
				return result, err
			}
			result.ClosedQuestions = append(result.ClosedQuestions, id)
		}
		if err := r.client.ZRem(ctx, closingIndexKey, id).Err(); err != nil {
			return result, err
		}
	}

	result.ClosedCount = len(result.ClosedQuestions)
	return result, nil
}

// ===== Today / yesterday markers =====

func (r *Repository) SetTodayQuestionID(ctx context.Context, id string) error {
	return r.client.Set(ctx, todayQuestionKey, id, 0).Err()
}

func (r *Repository) GetTodayQuestionID(ctx context.Context) (string, error) {
	id, err := r.client.Get(ctx, todayQuestionKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}

func (r *Repository) SetYesterdayQuestionID(ctx context.Context, id string) error {
	return r.client.Set(ctx, yesterdayQuestionKey, id, 0).Err()
}

func (r *Repository) GetYesterdayQuestionID(ctx context.Context) (string, error) {
	id, err := r.client.Get(ctx, yesterdayQuestionKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}

// ===== Votes =====

// RecordVote writes the vote and adjusts the question's running sum and
// count in one transaction. The question's vote map is watched; a
// concurrent write to it between watch and commit aborts the transaction
// and surfaces as ErrVoteConflict. The sum moves by the delta against the
// user's previous vote, so an overwrite never double-counts.
func (r *Repository) RecordVote(ctx context.Context, v models.Vote) error {
	value := strconv.Itoa(v.Value)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		prev, err := tx.HGet(ctx, keyQuestionVotes(v.QuestionID), v.UserID).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		firstVote := err == redis.Nil

		delta := int64(v.Value)
		if !firstVote {
			prevValue, perr := strconv.ParseInt(prev, 10, 64)
			if perr != nil {
				prevValue = 0
			}
			delta -= prevValue
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, keyQuestionVotes(v.QuestionID), v.UserID, value)
			pipe.HSet(ctx, keyUserVotes(v.UserID), v.QuestionID, value)
			pipe.ZAdd(ctx, keyUserHistory(v.UserID), &redis.Z{
				Score:  float64(v.Timestamp.UnixMilli()),
				Member: v.QuestionID,
			})
			if delta != 0 {
				pipe.HIncrBy(ctx, keyQuestionMeta(v.QuestionID), "vote_sum", delta)
			}
			if firstVote {
				pipe.HIncrBy(ctx, keyQuestionMeta(v.QuestionID), "total_votes", 1)
			}
			return nil
		})
		return err
	}, keyQuestionVotes(v.QuestionID))

	if err == redis.TxFailedErr {
		return repository.ErrVoteConflict
	}
	return err
}

func (r *Repository) GetUserVote(ctx context.Context, userID, questionID string) (*models.Vote, error) {
	raw, err := r.client.HGet(ctx, keyQuestionVotes(questionID), userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	q, err := r.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, nil
	}

	value, _ := strconv.Atoi(raw)
	return &models.Vote{
		UserID:     userID,
		QuestionID: questionID,
		Value:      value,
		// Individual vote timestamps are not stored; the user history
		// index holds the submission time.
		Timestamp: r.historyTimestamp(ctx, userID, questionID, q.CreatedAt),
	}, nil
}

func (r *Repository) GetQuestionVotes(ctx context.Context, questionID string) ([]models.Vote, error) {
	raw, err := r.client.HGetAll(ctx, keyQuestionVotes(questionID)).Result()
	if err != nil {
		return nil, err
	}
	q, err := r.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, nil
	}

	out := make([]models.Vote, 0, len(raw))
	for userID, valueRaw := range raw {
		value, _ := strconv.Atoi(valueRaw)
		out = append(out, models.Vote{
			UserID:     userID,
			QuestionID: questionID,
			Value:      value,
			Timestamp:  q.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *Repository) GetVoteDistribution(ctx context.Context, questionID string) ([]models.VoteDistribution, error) {
	raw, err := r.client.HGetAll(ctx, keyQuestionVotes(questionID)).Result()
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int64)
	for _, valueRaw := range raw {
		value, err := strconv.Atoi(valueRaw)
		if err != nil {
			continue
		}
		counts[value]++
	}

	out := make([]models.VoteDistribution, 0, len(counts))
	for value, count := range counts {
		out = append(out, models.VoteDistribution{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, nil
}

// ===== Predictions =====

// RecordPrediction stores the predicted value in the question's map, the
// user's mirror map, and the user's time-ordered prediction index. Only the
// raw predicted value is persisted; correctness is always derived at read
// time against the question's current average.
func (r *Repository) RecordPrediction(ctx context.Context, userID, questionID string, predicted decimal.Decimal, ts time.Time) error {
	value := predicted.String()
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, keyQuestionPredictions(questionID), userID, value)
		pipe.HSet(ctx, keyUserPredictions(userID), questionID, value)
		pipe.ZAdd(ctx, keyUserPredHistory(userID), &redis.Z{
			Score:  float64(ts.UnixMilli()),
			Member: questionID,
		})
		return nil
	})
	return err
}

func (r *Repository) GetUserPrediction(ctx context.Context, userID, questionID string) (*models.Prediction, error) {
	raw, err := r.client.HGet(ctx, keyQuestionPredictions(questionID), userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	q, err := r.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, nil
	}

	predicted, err := decimal.NewFromString(raw)
	if err != nil {
		predicted = decimal.Zero
	}
	accuracy, correct := stats.Evaluate(predicted, q.AverageVote)
	return &models.Prediction{
		UserID:        userID,
		QuestionID:    questionID,
		Predicted:     predicted,
		ActualAverage: q.AverageVote,
		Accuracy:      accuracy,
		IsCorrect:     correct,
		Timestamp:     r.predictionTimestamp(ctx, userID, questionID, q.CreatedAt),
	}, nil
}

func (r *Repository) GetQuestionPredictions(ctx context.Context, questionID string) ([]models.Prediction, error) {
	raw, err := r.client.HGetAll(ctx, keyQuestionPredictions(questionID)).Result()
	if err != nil {
		return nil, err
	}
	q, err := r.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, nil
	}

	out := make([]models.Prediction, 0, len(raw))
	for userID, valueRaw := range raw {
		predicted, err := decimal.NewFromString(valueRaw)
		if err != nil {
			predicted = decimal.Zero
		}
		accuracy, correct := stats.Evaluate(predicted, q.AverageVote)
		out = append(out, models.Prediction{
			UserID:        userID,
			QuestionID:    questionID,
			Predicted:     predicted,
			ActualAverage: q.AverageVote,
			Accuracy:      accuracy,
			IsCorrect:     correct,
			Timestamp:     q.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ===== Per-user indices =====

func (r *Repository) GetUserHistory(ctx context.Context, userID string, params repository.HistoryParams) ([]models.Question, error) {
	start := int64(params.Offset)
	if start < 0 {
		start = 0
	}
	stop := int64(-1)
	if params.Limit > 0 {
		stop = start + int64(params.Limit) - 1
	}

	ids, err := r.client.ZRange(ctx, keyUserHistory(userID), start, stop).Result()
	if err != nil {
		return nil, err
	}
	return r.GetQuestionsByIDs(ctx, ids)
}

func (r *Repository) GetUserVoteCount(ctx context.Context, userID string) (int64, error) {
	return r.client.HLen(ctx, keyUserVotes(userID)).Result()
}

// GetUserPredictionHistory returns the user's predicted question ids in
// chronological submission order; streak computation depends on this
// ordering.
func (r *Repository) GetUserPredictionHistory(ctx context.Context, userID string) ([]string, error) {
	return r.client.ZRange(ctx, keyUserPredHistory(userID), 0, -1).Result()
}

func (r *Repository) GetUserPredictionValues(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	raw, err := r.client.HGetAll(ctx, keyUserPredictions(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(raw))
	for questionID, valueRaw := range raw {
		predicted, err := decimal.NewFromString(valueRaw)
		if err != nil {
			continue
		}
		out[questionID] = predicted
	}
	return out, nil
}

func (r *Repository) GetUserSubmissionCount(ctx context.Context, userID string) (int64, error) {
	return r.client.ZCard(ctx, keyUserSubmissions(userID)).Result()
}

// TouchUserData refreshes the sliding expiry on the user's personal keys.
func (r *Repository) TouchUserData(ctx context.Context, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Expire(ctx, keyUserVotes(userID), ttl)
		pipe.Expire(ctx, keyUserPredictions(userID), ttl)
		pipe.Expire(ctx, keyUserHistory(userID), ttl)
		pipe.Expire(ctx, keyUserPredHistory(userID), ttl)
		return nil
	})
	return err
}

// ===== Parsing helpers =====

func parseQuestion(id string, data map[string]string) *models.Question {
	totalVotes := parseInt64(data["total_votes"])
	voteSum := parseInt64(data["vote_sum"])

	q := &models.Question{
		ID:          id,
		Text:        data["text"],
		CreatedAt:   parseTime(data["created_at"]),
		TotalVotes:  totalVotes,
		VoteSum:     voteSum,
		AverageVote: models.Average(voteSum, totalVotes),
		IsActive:    data["is_active"] == "1",
		SubmittedBy: data["submitted_by"],
	}
	if raw := data["closes_at"]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			q.ClosesAt = &t
		}
	}
	return q
}

func parseInt64(raw string) int64 {
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (r *Repository) historyTimestamp(ctx context.Context, userID, questionID string, fallback time.Time) time.Time {
	score, err := r.client.ZScore(ctx, keyUserHistory(userID), questionID).Result()
	if err != nil {
		return fallback
	}
	return time.UnixMilli(int64(score)).UTC()
}

func (r *Repository) predictionTimestamp(ctx context.Context, userID, questionID string, fallback time.Time) time.Time {
	score, err := r.client.ZScore(ctx, keyUserPredHistory(userID), questionID).Result()
	if err != nil {
		return fallback
	}
	return time.UnixMilli(int64(score)).UTC()
}
