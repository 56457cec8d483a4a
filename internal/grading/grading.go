// Package grading turns the prediction model's overall ratio into a book
// condition grade and a display percentage.
package grading

import (
	"math"

	"bookmarket/internal/models"
)

// Lower bounds are inclusive and compared against the unrounded ratio.
var thresholds = []struct {
	min       float64
	condition models.BookCondition
}{
	{98, models.ConditionLikeNew},
	{92, models.ConditionGood},
	{85, models.ConditionQuiteGood},
	{70, models.ConditionFair},
}

// Classify grades an overall ratio in [0, 100]. Out-of-range or NaN input
// falls through to POOR.
func Classify(ratio float64) models.BookCondition {
	for _, t := range thresholds {
		if ratio >= t.min {
			return t.condition
		}
	}
	return models.ConditionPoor
}

// Percentage rounds the ratio half up to an integer percent.
func Percentage(ratio float64) int {
	if math.IsNaN(ratio) {
		return 0
	}
	return int(math.Floor(ratio + 0.5))
}

// Rank orders conditions from worst (0) to best (4).
func Rank(c models.BookCondition) int {
	switch c {
	case models.ConditionLikeNew:
		return 4
	case models.ConditionGood:
		return 3
	case models.ConditionQuiteGood:
		return 2
	case models.ConditionFair:
		return 1
	default:
		return 0
	}
}

// Grade is the outcome of grading one ratio.
type Grade struct {
	Condition  models.BookCondition
	Percentage int
}

// Evaluate classifies the ratio and computes its percentage together.
func Evaluate(ratio float64) Grade {
	return Grade{Condition: Classify(ratio), Percentage: Percentage(ratio)}
}
