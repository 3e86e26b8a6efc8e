package service

import (
	"context"
	"fmt"

	"github.com/kursio/kursio-backend/internal/model"
	"github.com/kursio/kursio-backend/internal/repository"
)

// GateService decides which videos a learner may open and whether a quiz
// attempt may start. Decisions are computed on demand from the ledger and the
// active video list; nothing here writes state.
type GateService struct {
	videoRepo   *repository.VideoRepository
	attemptRepo *repository.AttemptRepository
}

// NewGateService creates a new GateService.
func NewGateService(videoRepo *repository.VideoRepository, attemptRepo *repository.AttemptRepository) *GateService {
	return &GateService{videoRepo: videoRepo, attemptRepo: attemptRepo}
}

// AttemptVerdict is the gate's answer to "can this learner attempt this quiz".
type AttemptVerdict string

const (
	VerdictLocked      AttemptVerdict = "LOCKED"
	VerdictResume      AttemptVerdict = "RESUME"
	VerdictPassed      AttemptVerdict = "PASSED"
	VerdictMaxAttempts AttemptVerdict = "MAX_ATTEMPTS"
	VerdictStart       AttemptVerdict = "START"
)

// AttemptDecision carries the verdict plus what the learner UI needs to
// render it.
type AttemptDecision struct {
	Verdict       AttemptVerdict `json:"verdict"`
	AttemptsUsed  int            `json:"attempts_used"`
	AttemptsLeft  int            `json:"attempts_left"`
	AttemptID     *int           `json:"attempt_id,omitempty"`
	TimeRemaining *int           `json:"time_remaining,omitempty"`
}

// videoUnlocked reports whether a video is open for the learner. The
// lowest-sequenced active video is always open; any other video requires a
// pass on every active video sequenced strictly before it.
func videoUnlocked(activeVideos []model.Video, passed map[int]bool, videoID int) bool {
	var target *model.Video
	for i := range activeVideos {
		if activeVideos[i].ID == videoID {
			target = &activeVideos[i]
			break
		}
	}
	if target == nil {
		return false
	}
	for _, v := range activeVideos {
		if v.SequenceNumber < target.SequenceNumber && !passed[v.ID] {
			return false
		}
	}
	return true
}

// decideAttempt resolves the gate verdict for one video given the learner's
// attempts on it, in attempt_number order.
func decideAttempt(unlocked bool, attempts []model.QuizAttempt) AttemptDecision {
	decision := AttemptDecision{}
	for i := range attempts {
		a := &attempts[i]
		if a.Status == model.AttemptStatusInProgress {
			decision.Verdict = VerdictResume
			decision.AttemptID = &a.ID
			decision.TimeRemaining = &a.TimeRemaining
		}
		if a.Status.IsTerminal() {
			decision.AttemptsUsed++
			if a.IsPassed != nil && *a.IsPassed {
				decision.Verdict = VerdictPassed
			}
		}
	}
	decision.AttemptsLeft = model.MaxAttemptsPerVideo - decision.AttemptsUsed
	if decision.AttemptsLeft < 0 {
		decision.AttemptsLeft = 0
	}
	if decision.Verdict == VerdictPassed {
		// A passed video needs no further attempts, even when some were
		// never used.
		decision.AttemptsLeft = 0
	}

	switch {
	case !unlocked:
		// Locked overrides everything, including an open attempt left over
		// from before the video was resequenced.
		decision.Verdict = VerdictLocked
	case decision.Verdict == VerdictResume || decision.Verdict == VerdictPassed:
		// Keep it.
	case decision.AttemptsUsed >= model.MaxAttemptsPerVideo:
		decision.Verdict = VerdictMaxAttempts
	default:
		decision.Verdict = VerdictStart
	}
	return decision
}

// IsUnlocked reports whether a learner may open the given active video.
func (s *GateService) IsUnlocked(ctx context.Context, userID, videoID int) (bool, error) {
	videos, err := s.videoRepo.ListActive(ctx)
	if err != nil {
		return false, fmt.Errorf("list active videos: %w", err)
	}
	passed, err := s.attemptRepo.ListPassedVideoIDs(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list passed videos: %w", err)
	}
	return videoUnlocked(videos, passed, videoID), nil
}

// CanAttempt resolves the full gate verdict for a learner and video.
func (s *GateService) CanAttempt(ctx context.Context, userID, videoID int) (*AttemptDecision, error) {
	unlocked, err := s.IsUnlocked(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attemptRepo.ListByUserVideo(ctx, userID, videoID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	decision := decideAttempt(unlocked, attempts)
	return &decision, nil
}

// ListWithLockState returns every active video annotated with the learner's
// unlock state, in sequence order.
func (s *GateService) ListWithLockState(ctx context.Context, userID int) ([]model.VideoWithLock, error) {
	videos, err := s.videoRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active videos: %w", err)
	}
	passed, err := s.attemptRepo.ListPassedVideoIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list passed videos: %w", err)
	}

	list := make([]model.VideoWithLock, 0, len(videos))
	for _, v := range videos {
		list = append(list, model.VideoWithLock{
			Video:    v,
			Unlocked: videoUnlocked(videos, passed, v.ID),
		})
	}
	return list, nil
}
