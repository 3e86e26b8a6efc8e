package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kursio/kursio-backend/internal/model"
)

func TestVideoUnlockedFirstInSequence(t *testing.T) {
	videos := []model.Video{video(10, 1), video(20, 2), video(30, 3)}

	assert.True(t, videoUnlocked(videos, nil, 10))
	assert.False(t, videoUnlocked(videos, nil, 20))
	assert.False(t, videoUnlocked(videos, nil, 30))
}

func TestVideoUnlockedRequiresAllPredecessors(t *testing.T) {
	videos := []model.Video{video(10, 1), video(20, 2), video(30, 3)}

	passed := map[int]bool{10: true}
	assert.True(t, videoUnlocked(videos, passed, 20))
	assert.False(t, videoUnlocked(videos, passed, 30))

	passed[20] = true
	assert.True(t, videoUnlocked(videos, passed, 30))
}

func TestVideoUnlockedSkippingPredecessorStaysLocked(t *testing.T) {
	videos := []model.Video{video(10, 1), video(20, 2), video(30, 3)}

	// Passing video 2 without video 1 does not open video 3.
	passed := map[int]bool{20: true}
	assert.False(t, videoUnlocked(videos, passed, 30))
}

func TestVideoUnlockedUnknownVideo(t *testing.T) {
	videos := []model.Video{video(10, 1)}

	assert.False(t, videoUnlocked(videos, map[int]bool{10: true}, 99))
}

func TestDecideAttemptLockedOverridesEverything(t *testing.T) {
	attempts := []model.QuizAttempt{
		{ID: 1, Status: model.AttemptStatusInProgress},
	}

	decision := decideAttempt(false, attempts)

	assert.Equal(t, VerdictLocked, decision.Verdict)
}

func TestDecideAttemptFreshStart(t *testing.T) {
	decision := decideAttempt(true, nil)

	assert.Equal(t, VerdictStart, decision.Verdict)
	assert.Equal(t, 0, decision.AttemptsUsed)
	assert.Equal(t, model.MaxAttemptsPerVideo, decision.AttemptsLeft)
}

func TestDecideAttemptResume(t *testing.T) {
	attempts := []model.QuizAttempt{
		{ID: 7, Status: model.AttemptStatusInProgress, TimeRemaining: 420},
	}

	decision := decideAttempt(true, attempts)

	assert.Equal(t, VerdictResume, decision.Verdict)
	assert.NotNil(t, decision.AttemptID)
	assert.Equal(t, 7, *decision.AttemptID)
	assert.NotNil(t, decision.TimeRemaining)
	assert.Equal(t, 420, *decision.TimeRemaining)
}

func TestDecideAttemptPassed(t *testing.T) {
	// A pass on the first try leaves an unused attempt, but a passed video
	// reports zero attempts left.
	attempts := []model.QuizAttempt{
		{ID: 1, Status: model.AttemptStatusCompleted, IsPassed: boolPtr(true)},
	}

	decision := decideAttempt(true, attempts)

	assert.Equal(t, VerdictPassed, decision.Verdict)
	assert.Equal(t, 1, decision.AttemptsUsed)
	assert.Equal(t, 0, decision.AttemptsLeft)
}

func TestDecideAttemptSecondChance(t *testing.T) {
	attempts := []model.QuizAttempt{
		{ID: 1, Status: model.AttemptStatusCompleted, IsPassed: boolPtr(false)},
	}

	decision := decideAttempt(true, attempts)

	assert.Equal(t, VerdictStart, decision.Verdict)
	assert.Equal(t, 1, decision.AttemptsUsed)
	assert.Equal(t, 1, decision.AttemptsLeft)
}

func TestDecideAttemptExhausted(t *testing.T) {
	attempts := []model.QuizAttempt{
		{ID: 1, Status: model.AttemptStatusCompleted, IsPassed: boolPtr(false)},
		{ID: 2, Status: model.AttemptStatusTimedOut, IsPassed: boolPtr(false)},
	}

	decision := decideAttempt(true, attempts)

	assert.Equal(t, VerdictMaxAttempts, decision.Verdict)
	assert.Equal(t, 2, decision.AttemptsUsed)
	assert.Equal(t, 0, decision.AttemptsLeft)
}

func TestDecideAttemptPassedBeatsExhausted(t *testing.T) {
	// Both attempts used, but one passed: the verdict is passed, not
	// max_attempts.
	attempts := []model.QuizAttempt{
		{ID: 1, Status: model.AttemptStatusCompleted, IsPassed: boolPtr(false)},
		{ID: 2, Status: model.AttemptStatusCompleted, IsPassed: boolPtr(true)},
	}

	decision := decideAttempt(true, attempts)

	assert.Equal(t, VerdictPassed, decision.Verdict)
	assert.Equal(t, 0, decision.AttemptsLeft)
}
