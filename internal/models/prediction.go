package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prediction is one user's guess of a question's eventual crowd average.
// Accuracy and IsCorrect are evaluated against the question's average at
// read time, so they can change while voting stays open.
type Prediction struct {
	UserID        string          `json:"userId"`
	QuestionID    string          `json:"questionId"`
	Predicted     decimal.Decimal `json:"predictedAverage"`
	ActualAverage decimal.Decimal `json:"actualAverage"`
	Accuracy      decimal.Decimal `json:"accuracy"`
	IsCorrect     bool            `json:"isCorrect"`
	Timestamp     time.Time       `json:"timestamp"`
}
