package stats

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name      string
		predicted string
		actual    string
		accuracy  string
		correct   bool
	}{
		{"exact", "5", "5", "0", true},
		{"at threshold", "3", "5", "2", true},
		{"just outside", "3", "6", "3", false},
		{"negative side", "-5", "2", "7", false},
		{"fractional inside", "1.5", "3.4", "1.9", true},
		{"fractional boundary", "0", "2.0", "2", true},
		{"fractional outside", "0", "2.01", "2.01", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			predicted, _ := decimal.NewFromString(tc.predicted)
			actual, _ := decimal.NewFromString(tc.actual)
			want, _ := decimal.NewFromString(tc.accuracy)
			accuracy, correct := Evaluate(predicted, actual)
			if !accuracy.Equal(want) {
				t.Fatalf("accuracy=%s want %s", accuracy, want)
			}
			if correct != tc.correct {
				t.Fatalf("correct=%v want %v", correct, tc.correct)
			}
		})
	}
}
