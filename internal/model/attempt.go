package model

import "time"

// AttemptStatus enumerates quiz attempt states. in_progress is the only
// non-terminal state; completed and timed_out are terminal.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusCompleted  AttemptStatus = "completed"
	AttemptStatusTimedOut   AttemptStatus = "timed_out"
)

// IsTerminal reports whether no further transitions are allowed.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptStatusCompleted || s == AttemptStatusTimedOut
}

// MaxAttemptsPerVideo is the hard cap on attempts per (learner, video).
const MaxAttemptsPerVideo = 2

// QuizAttempt is one ledger entry: a single scored run of a video's quiz.
// Score, Percentage and IsPassed stay NULL until the attempt is finalized.
type QuizAttempt struct {
	ID            int           `json:"id"`
	UserID        int           `json:"user_id"`
	VideoID       int           `json:"video_id"`
	AttemptNumber int           `json:"attempt_number"`
	Status        AttemptStatus `json:"status"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       *time.Time    `json:"end_time,omitempty"`
	TimeRemaining int           `json:"time_remaining"`
	Score         *int          `json:"score,omitempty"`
	Percentage    *float64      `json:"percentage,omitempty"`
	IsPassed      *bool         `json:"is_passed,omitempty"`
}

// UserAnswer is the per-question record under an attempt. Rows are
// pre-materialized empty when the attempt starts, so "answered" is a
// NULL-check instead of a join against all questions.
type UserAnswer struct {
	ID               int   `json:"id"`
	AttemptID        int   `json:"attempt_id"`
	QuestionID       int   `json:"question_id"`
	SelectedAnswerID *int  `json:"selected_answer_id,omitempty"`
	IsCorrect        *bool `json:"is_correct,omitempty"`
}

// StartAttemptRequest is the payload for starting a quiz attempt.
type StartAttemptRequest struct {
	VideoID int `json:"video_id" binding:"required,min=1"`
}

// SubmitAnswerRequest is the payload for answering one question.
// Resubmission overwrites the previous selection (last write wins).
type SubmitAnswerRequest struct {
	QuestionID int `json:"question_id" binding:"required,min=1"`
	AnswerID   int `json:"answer_id" binding:"required,min=1"`
}

// UpdateTimerRequest carries the client-reported remaining seconds. The
// server does not run its own countdown; it only reacts to values <= 0.
type UpdateTimerRequest struct {
	TimeRemaining *int `json:"time_remaining" binding:"required"`
}
