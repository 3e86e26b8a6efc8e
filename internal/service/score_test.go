package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kursio/kursio-backend/internal/model"
)

func answerRecord(correct *bool) model.UserAnswer {
	return model.UserAnswer{IsCorrect: correct}
}

func TestScoreAnswersFloatDivision(t *testing.T) {
	records := []model.UserAnswer{
		answerRecord(boolPtr(true)),
		answerRecord(boolPtr(true)),
		answerRecord(boolPtr(true)),
		answerRecord(boolPtr(false)),
		answerRecord(boolPtr(false)),
	}

	score, pct := scoreAnswers(records, 5)

	assert.Equal(t, 3, score)
	// Integer division would yield 0 here.
	assert.InDelta(t, 60.0, pct, 0.001)
}

func TestScoreAnswersUnansweredCountWrong(t *testing.T) {
	// Pre-materialized blank records have a NULL is_correct.
	records := []model.UserAnswer{
		answerRecord(boolPtr(true)),
		answerRecord(nil),
		answerRecord(nil),
	}

	score, pct := scoreAnswers(records, 3)

	assert.Equal(t, 1, score)
	assert.InDelta(t, 33.333, pct, 0.01)
}

func TestScoreAnswersEmptyQuiz(t *testing.T) {
	score, pct := scoreAnswers(nil, 0)

	assert.Equal(t, 0, score)
	assert.Zero(t, pct)
}

func TestScoreAnswersPassBoundary(t *testing.T) {
	records := []model.UserAnswer{
		answerRecord(boolPtr(true)),
		answerRecord(boolPtr(true)),
		answerRecord(boolPtr(true)),
		answerRecord(boolPtr(true)),
		answerRecord(boolPtr(true)),
		answerRecord(boolPtr(true)),
		answerRecord(boolPtr(true)),
		answerRecord(boolPtr(false)),
		answerRecord(boolPtr(false)),
		answerRecord(boolPtr(false)),
	}

	_, pct := scoreAnswers(records, 10)

	// Exactly at a 70% threshold counts as passing (>=).
	assert.InDelta(t, 70.0, pct, 0.001)
	assert.True(t, pct >= 70.0)

	_, pct = scoreAnswers(records[:9], 9) // 7 of 9 correct
	assert.InDelta(t, 77.777, pct, 0.01)
}
