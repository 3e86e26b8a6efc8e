package service

import "errors"

// Sentinel errors shared across services. Handlers translate these to the
// typed API error codes; anything else is a 500.
var (
	// ErrNotFound covers absent videos, questions, answers, attempts and
	// certificates, including "exists but not inside the requested parent".
	ErrNotFound = errors.New("record not found")

	// ErrForbidden is returned when a learner touches an attempt or
	// certificate that is not theirs.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState is returned for operations on a terminal attempt.
	ErrInvalidState = errors.New("attempt is no longer in progress")

	// ErrVideoLocked is returned when the unlock gate denies a video.
	ErrVideoLocked = errors.New("video is locked")

	// ErrAttemptLimitExceeded is returned on the third start for the same
	// (learner, video).
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")

	// ErrAlreadyExists is returned for duplicate certificate issuance.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrNotEligible is returned when certificate issuance is requested
	// before every active video is passed.
	ErrNotEligible = errors.New("course not completed")
)
