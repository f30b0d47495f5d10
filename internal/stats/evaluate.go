// Package stats derives histograms, prediction correctness and per-user
// aggregates from repository data. It never writes.
package stats

import (
	"github.com/shopspring/decimal"

	"predictably/internal/models"
)

// Threshold is the maximum distance from the actual average for a
// prediction to count as correct.
var Threshold = decimal.NewFromInt(models.CorrectThreshold)

// Evaluate applies the single correctness rule used at submission time and
// on every later read: accuracy is the absolute distance between predicted
// and actual, and a prediction is correct when that distance does not
// exceed the threshold.
func Evaluate(predicted, actual decimal.Decimal) (accuracy decimal.Decimal, correct bool) {
	accuracy = predicted.Sub(actual).Abs()
	return accuracy, accuracy.LessThanOrEqual(Threshold)
}
