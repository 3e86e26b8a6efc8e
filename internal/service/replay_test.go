package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kursio/kursio-backend/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func video(id, seq int) model.Video {
	return model.Video{ID: id, SequenceNumber: seq, IsActive: true, PassingPercentage: 70}
}

func terminalAttempt(videoID, number int, passed bool) model.QuizAttempt {
	return model.QuizAttempt{
		VideoID:       videoID,
		AttemptNumber: number,
		Status:        model.AttemptStatusCompleted,
		IsPassed:      boolPtr(passed),
	}
}

func TestReplayClassifiesVideos(t *testing.T) {
	videos := []model.Video{video(1, 1), video(2, 2), video(3, 3), video(4, 4)}
	attempts := []model.QuizAttempt{
		terminalAttempt(1, 1, true),  // passed first try
		terminalAttempt(2, 1, false), // failed once, one attempt left
		terminalAttempt(3, 1, false), // failed twice, exhausted
		terminalAttempt(3, 2, false),
		// video 4 never attempted
	}

	snap := Replay(videos, attempts)

	assert.Equal(t, []int{1}, snap.VideosPassed)
	assert.Equal(t, []int{3}, snap.VideosFailed)
	assert.Equal(t, 1, snap.TotalRetries)
	assert.InDelta(t, 25.0, snap.OverallProgress, 0.001)
}

func TestReplayPassOnSecondAttempt(t *testing.T) {
	videos := []model.Video{video(1, 1)}
	attempts := []model.QuizAttempt{
		terminalAttempt(1, 1, false),
		terminalAttempt(1, 2, true),
	}

	snap := Replay(videos, attempts)

	assert.Equal(t, []int{1}, snap.VideosPassed)
	assert.Empty(t, snap.VideosFailed)
	assert.Equal(t, 1, snap.TotalRetries)
	assert.InDelta(t, 100.0, snap.OverallProgress, 0.001)
}

func TestReplayIgnoresOpenAttempts(t *testing.T) {
	videos := []model.Video{video(1, 1)}
	attempts := []model.QuizAttempt{
		{VideoID: 1, AttemptNumber: 1, Status: model.AttemptStatusInProgress},
	}

	snap := Replay(videos, attempts)

	assert.Empty(t, snap.VideosPassed)
	assert.Empty(t, snap.VideosFailed)
	assert.Equal(t, 0, snap.TotalRetries)
	assert.Zero(t, snap.OverallProgress)
}

func TestReplayIgnoresAttemptsOnInactiveVideos(t *testing.T) {
	// Video 2 was deactivated after the learner passed it. Its attempts no
	// longer count toward anything.
	videos := []model.Video{video(1, 1)}
	attempts := []model.QuizAttempt{
		terminalAttempt(1, 1, true),
		terminalAttempt(2, 1, true),
		terminalAttempt(2, 2, false),
	}

	snap := Replay(videos, attempts)

	assert.Equal(t, []int{1}, snap.VideosPassed)
	assert.Equal(t, 0, snap.TotalRetries)
	assert.InDelta(t, 100.0, snap.OverallProgress, 0.001)
}

func TestReplayCountsTimedOutAsTerminal(t *testing.T) {
	videos := []model.Video{video(1, 1)}
	attempts := []model.QuizAttempt{
		{VideoID: 1, AttemptNumber: 1, Status: model.AttemptStatusTimedOut, IsPassed: boolPtr(false)},
		{VideoID: 1, AttemptNumber: 2, Status: model.AttemptStatusTimedOut, IsPassed: boolPtr(false)},
	}

	snap := Replay(videos, attempts)

	assert.Equal(t, []int{1}, snap.VideosFailed)
	assert.Equal(t, 1, snap.TotalRetries)
}

func TestReplayIsIdempotent(t *testing.T) {
	videos := []model.Video{video(1, 1), video(2, 2)}
	attempts := []model.QuizAttempt{
		terminalAttempt(1, 1, false),
		terminalAttempt(1, 2, true),
		terminalAttempt(2, 1, false),
	}

	first := Replay(videos, attempts)
	second := Replay(videos, attempts)

	assert.Equal(t, first, second)
}

func TestReplaySelfHealsAfterDeletion(t *testing.T) {
	videos := []model.Video{video(1, 1)}
	attempts := []model.QuizAttempt{
		terminalAttempt(1, 1, false),
		terminalAttempt(1, 2, false),
	}

	before := Replay(videos, attempts)
	require.Equal(t, []int{1}, before.VideosFailed)

	// An admin deletes the second attempt; the replay of the remaining
	// ledger no longer marks the video failed.
	after := Replay(videos, attempts[:1])

	assert.Empty(t, after.VideosFailed)
	assert.Equal(t, 0, after.TotalRetries)
}

func TestReplayWithNoActiveVideos(t *testing.T) {
	snap := Replay(nil, []model.QuizAttempt{terminalAttempt(1, 1, true)})

	assert.Empty(t, snap.VideosPassed)
	assert.Empty(t, snap.VideosFailed)
	assert.Zero(t, snap.OverallProgress)
}

func TestReplayProgressUsesFloatDivision(t *testing.T) {
	videos := []model.Video{video(1, 1), video(2, 2), video(3, 3)}
	attempts := []model.QuizAttempt{terminalAttempt(1, 1, true)}

	snap := Replay(videos, attempts)

	// 1/3 must not truncate to 0.
	assert.InDelta(t, 33.333, snap.OverallProgress, 0.01)
}
