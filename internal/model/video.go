package model

import "time"

// Video represents one lecture in the sequential course. SequenceNumber is
// unique and defines both playback order and quiz gating.
type Video struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	VideoURL          string    `json:"video_url"`
	DurationSeconds   int       `json:"duration_seconds"`
	SequenceNumber    int       `json:"sequence_number"`
	PassingPercentage int       `json:"passing_percentage"`
	TimeLimitMinutes  int       `json:"time_limit_minutes"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateVideoRequest is the payload for creating a video.
type CreateVideoRequest struct {
	Title             string `json:"title" binding:"required,min=1,max=255"`
	Description       string `json:"description" binding:"omitempty"`
	VideoURL          string `json:"video_url" binding:"omitempty,max=500"`
	DurationSeconds   int    `json:"duration_seconds" binding:"min=0"`
	SequenceNumber    int    `json:"sequence_number" binding:"required,min=1"`
	PassingPercentage int    `json:"passing_percentage" binding:"min=0,max=100"`
	TimeLimitMinutes  int    `json:"time_limit_minutes" binding:"required,min=1,max=480"`
}

// UpdateVideoRequest is the payload for updating a video.
type UpdateVideoRequest struct {
	Title             string  `json:"title" binding:"omitempty,min=1,max=255"`
	Description       *string `json:"description" binding:"omitempty"`
	VideoURL          *string `json:"video_url" binding:"omitempty,max=500"`
	DurationSeconds   *int    `json:"duration_seconds" binding:"omitempty,min=0"`
	SequenceNumber    *int    `json:"sequence_number" binding:"omitempty,min=1"`
	PassingPercentage *int    `json:"passing_percentage" binding:"omitempty,min=0,max=100"`
	TimeLimitMinutes  *int    `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
	IsActive          *bool   `json:"is_active" binding:"omitempty"`
}

// VideoWithLock is a video entry in the learner lobby, annotated with the
// gate decision.
type VideoWithLock struct {
	Video
	Unlocked bool `json:"unlocked"`
}
