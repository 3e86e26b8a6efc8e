package service

import "github.com/kursio/kursio-backend/internal/model"

// scoreAnswers computes an attempt's score and percentage from its answer
// records. Both terminal paths (finish and timer expiry) use this one
// function so their semantics can never diverge.
//
// The percentage uses float division: 3 correct out of 5 must be 60.0, not
// the 0 an integer division would silently produce.
func scoreAnswers(records []model.UserAnswer, totalQuestions int) (score int, percentage float64) {
	for _, rec := range records {
		if rec.IsCorrect != nil && *rec.IsCorrect {
			score++
		}
	}
	if totalQuestions > 0 {
		percentage = float64(score) / float64(totalQuestions) * 100.0
	}
	return score, percentage
}
