package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/kursio/kursio-backend/internal/config"
	"github.com/kursio/kursio-backend/internal/model"
	"github.com/kursio/kursio-backend/internal/repository"
)

// QuizService runs the attempt state machine: start, answer, finish, time out.
// Every transition that ends an attempt also reconciles the learner's progress
// summary inside the same transaction.
type QuizService struct {
	pool         *pgxpool.Pool
	attemptRepo  *repository.AttemptRepository
	questionRepo *repository.QuestionRepository
	videoRepo    *repository.VideoRepository
	gate         *GateService
	progress     *ProgressService
	rdb          *redis.Client
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	pool *pgxpool.Pool,
	attemptRepo *repository.AttemptRepository,
	questionRepo *repository.QuestionRepository,
	videoRepo *repository.VideoRepository,
	gate *GateService,
	progress *ProgressService,
	rdb *redis.Client,
) *QuizService {
	return &QuizService{
		pool:         pool,
		attemptRepo:  attemptRepo,
		questionRepo: questionRepo,
		videoRepo:    videoRepo,
		gate:         gate,
		progress:     progress,
		rdb:          rdb,
	}
}

// StartAttempt opens a quiz attempt for a learner on a video. Calling it with
// an attempt already open returns that attempt, so a page refresh resumes
// instead of burning a retry.
func (s *QuizService) StartAttempt(ctx context.Context, userID, videoID int) (*model.QuizAttempt, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	if !video.IsActive {
		return nil, ErrNotFound
	}

	unlocked, err := s.gate.IsUnlocked(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		return nil, ErrVideoLocked
	}

	existing, err := s.attemptRepo.GetInProgress(ctx, userID, videoID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check open attempt: %w", err)
	}

	previous, err := s.attemptRepo.ListByUserVideo(ctx, userID, videoID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	if len(previous) >= model.MaxAttemptsPerVideo {
		return nil, ErrAttemptLimitExceeded
	}

	questionIDs, err := s.questionRepo.ListIDsByVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	attempt := &model.QuizAttempt{
		UserID:        userID,
		VideoID:       videoID,
		AttemptNumber: len(previous) + 1,
		Status:        model.AttemptStatusInProgress,
		TimeRemaining: video.TimeLimitMinutes * 60,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	txAttempts := s.attemptRepo.WithTx(tx)
	if err := txAttempts.Create(ctx, attempt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Lost a race with a concurrent start on another device. If the
			// winner's attempt is still open, hand it back; otherwise the
			// learner really is out of attempts.
			if existing, fetchErr := s.attemptRepo.GetInProgress(ctx, userID, videoID); fetchErr == nil {
				return existing, nil
			}
			return nil, ErrAttemptLimitExceeded
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	if len(questionIDs) > 0 {
		if err := txAttempts.CreateEmptyAnswers(ctx, attempt.ID, questionIDs); err != nil {
			return nil, fmt.Errorf("create answer records: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	// Seed the timer cache. Best effort, the DB copy is the source of truth.
	if err := s.rdb.Set(ctx, config.CacheKey.AttemptTimerKey(attempt.ID), attempt.TimeRemaining, 0).Err(); err != nil {
		log.Warn().Err(err).Int("attempt_id", attempt.ID).Msg("Failed to cache attempt timer")
	}

	return attempt, nil
}

// getOwnedOpenAttempt loads an attempt and enforces the two mutation guards:
// the caller owns it and it is still in progress.
func (s *QuizService) getOwnedOpenAttempt(ctx context.Context, userID, attemptID int) (*model.QuizAttempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, ErrForbidden
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, ErrInvalidState
	}
	return attempt, nil
}

// SubmitAnswer records a learner's selection for one question. Resubmitting
// the same question overwrites the earlier choice. Correctness is stored but
// not revealed until the attempt is finalized.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID, attemptID, questionID, answerID int) error {
	attempt, err := s.getOwnedOpenAttempt(ctx, userID, attemptID)
	if err != nil {
		return err
	}

	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get question: %w", err)
	}
	if question.VideoID != attempt.VideoID {
		return ErrNotFound
	}

	answer, err := s.questionRepo.GetAnswer(ctx, answerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get answer: %w", err)
	}
	if answer.QuestionID != questionID {
		return ErrNotFound
	}

	if err := s.attemptRepo.UpsertAnswer(ctx, attemptID, questionID, answerID, answer.IsCorrect); err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}
	return nil
}

// Finish finalizes an attempt as completed and returns it with the score.
func (s *QuizService) Finish(ctx context.Context, userID, attemptID int) (*model.QuizAttempt, error) {
	attempt, err := s.getOwnedOpenAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	return s.finalize(ctx, attempt, model.AttemptStatusCompleted)
}

// UpdateTimer persists the client-reported remaining seconds. A value at or
// below zero finalizes the attempt as timed out, scored from whatever answers
// were recorded before the clock ran out.
func (s *QuizService) UpdateTimer(ctx context.Context, userID, attemptID, remaining int) (*model.QuizAttempt, error) {
	attempt, err := s.getOwnedOpenAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}

	if remaining <= 0 {
		attempt.TimeRemaining = 0
		return s.finalize(ctx, attempt, model.AttemptStatusTimedOut)
	}

	if err := s.attemptRepo.UpdateTimeRemaining(ctx, attemptID, remaining); err != nil {
		return nil, fmt.Errorf("update timer: %w", err)
	}
	attempt.TimeRemaining = remaining

	if err := s.rdb.Set(ctx, config.CacheKey.AttemptTimerKey(attemptID), remaining, 0).Err(); err != nil {
		log.Warn().Err(err).Int("attempt_id", attemptID).Msg("Failed to cache attempt timer")
	}
	return attempt, nil
}

// finalize is the single terminal transition. Both Finish and timer expiry go
// through here with a different terminal status, so scoring can never differ
// between the two paths. The attempt update and the progress reconciliation
// commit or roll back together.
func (s *QuizService) finalize(ctx context.Context, attempt *model.QuizAttempt, status model.AttemptStatus) (*model.QuizAttempt, error) {
	video, err := s.videoRepo.GetByID(ctx, attempt.VideoID)
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	total, err := s.questionRepo.CountByVideo(ctx, attempt.VideoID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	txAttempts := s.attemptRepo.WithTx(tx)
	records, err := txAttempts.ListAnswers(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("list answer records: %w", err)
	}

	score, percentage := scoreAnswers(records, total)
	isPassed := percentage >= float64(video.PassingPercentage)
	endTime := time.Now()

	attempt.Status = status
	attempt.Score = &score
	attempt.Percentage = &percentage
	attempt.IsPassed = &isPassed

	if err := txAttempts.Finalize(ctx, attempt, endTime); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Another request finalized it first.
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("finalize attempt: %w", err)
	}

	if _, err := s.progress.syncInTx(ctx, tx, attempt.UserID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	attempt.EndTime = &endTime
	s.rdb.Del(ctx, config.CacheKey.AttemptTimerKey(attempt.ID))

	log.Info().
		Int("attempt_id", attempt.ID).
		Int("user_id", attempt.UserID).
		Int("video_id", attempt.VideoID).
		Str("status", string(status)).
		Int("score", score).
		Float64("percentage", percentage).
		Bool("is_passed", isPassed).
		Msg("Attempt finalized")

	return attempt, nil
}

// AttemptState is what a resuming quiz page needs to rebuild itself.
type AttemptState struct {
	AttemptID      int                 `json:"attempt_id"`
	Status         model.AttemptStatus `json:"status"`
	TimeRemaining  int                 `json:"time_remaining"`
	AnsweredCount  int                 `json:"answered_count"`
	TotalQuestions int                 `json:"total_questions"`
}

// GetState returns the live state of a learner's open attempt. The timer is
// read from Redis with a DB fallback that heals the cache on a miss.
func (s *QuizService) GetState(ctx context.Context, userID, attemptID int) (*AttemptState, error) {
	attempt, err := s.getOwnedOpenAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}

	remaining := attempt.TimeRemaining
	val, err := s.rdb.Get(ctx, config.CacheKey.AttemptTimerKey(attemptID)).Result()
	if err == nil {
		if cached, parseErr := strconv.Atoi(val); parseErr == nil {
			remaining = cached
		}
	} else if errors.Is(err, redis.Nil) {
		// Cache miss (evicted or restarted Redis). The DB value stands;
		// put it back so the next poll is cheap.
		_ = s.rdb.Set(ctx, config.CacheKey.AttemptTimerKey(attemptID), remaining, 0)
	} else {
		log.Warn().Err(err).Int("attempt_id", attemptID).Msg("Redis timer read failed, using DB value")
	}

	records, err := s.attemptRepo.ListAnswers(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list answer records: %w", err)
	}
	answered := 0
	for _, rec := range records {
		if rec.SelectedAnswerID != nil {
			answered++
		}
	}

	return &AttemptState{
		AttemptID:      attemptID,
		Status:         attempt.Status,
		TimeRemaining:  remaining,
		AnsweredCount:  answered,
		TotalQuestions: len(records),
	}, nil
}

// GetResult returns a finalized attempt with its answer records. Learners can
// only read their own attempts.
func (s *QuizService) GetResult(ctx context.Context, userID, attemptID int) (*model.QuizAttempt, []model.UserAnswer, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, nil, ErrForbidden
	}

	records, err := s.attemptRepo.ListAnswers(ctx, attemptID)
	if err != nil {
		return nil, nil, fmt.Errorf("list answer records: %w", err)
	}
	return attempt, records, nil
}

// ListAttempts returns a learner's attempts for one video, oldest first.
func (s *QuizService) ListAttempts(ctx context.Context, userID, videoID int) ([]model.QuizAttempt, error) {
	attempts, err := s.attemptRepo.ListByUserVideo(ctx, userID, videoID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
