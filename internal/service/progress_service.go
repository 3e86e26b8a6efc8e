package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/kursio/kursio-backend/internal/config"
	"github.com/kursio/kursio-backend/internal/model"
	"github.com/kursio/kursio-backend/internal/repository"
)

// ProgressService reconciles learner progress from the attempt ledger. The
// summary rows it writes are a derived cache; the ledger is the only source
// of truth, and every write path here goes through Replay.
type ProgressService struct {
	pool         *pgxpool.Pool
	userRepo     *repository.UserRepository
	videoRepo    *repository.VideoRepository
	attemptRepo  *repository.AttemptRepository
	progressRepo *repository.ProgressRepository
	rdb          *redis.Client
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	pool *pgxpool.Pool,
	userRepo *repository.UserRepository,
	videoRepo *repository.VideoRepository,
	attemptRepo *repository.AttemptRepository,
	progressRepo *repository.ProgressRepository,
	rdb *redis.Client,
) *ProgressService {
	return &ProgressService{
		pool:         pool,
		userRepo:     userRepo,
		videoRepo:    videoRepo,
		attemptRepo:  attemptRepo,
		progressRepo: progressRepo,
		rdb:          rdb,
	}
}

// syncInTx replays the learner's ledger and persists the resulting snapshot,
// all inside the caller's transaction. The quiz finalization path calls this
// with the same transaction that finalizes the attempt, so an attempt can
// never be terminal without its summary reflecting it.
func (s *ProgressService) syncInTx(ctx context.Context, tx pgx.Tx, userID int) (model.ProgressSnapshot, error) {
	videos, err := s.videoRepo.WithTx(tx).ListActive(ctx)
	if err != nil {
		return model.ProgressSnapshot{}, fmt.Errorf("list active videos: %w", err)
	}
	attempts, err := s.attemptRepo.WithTx(tx).ListTerminalByUser(ctx, userID)
	if err != nil {
		return model.ProgressSnapshot{}, fmt.Errorf("list terminal attempts: %w", err)
	}

	snap := Replay(videos, attempts)
	if err := s.progressRepo.WithTx(tx).Replace(ctx, userID, snap); err != nil {
		return model.ProgressSnapshot{}, fmt.Errorf("replace summary: %w", err)
	}
	return snap, nil
}

// SyncUser recalculates one learner's summary in its own transaction.
func (s *ProgressService) SyncUser(ctx context.Context, userID int) (model.ProgressSnapshot, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.ProgressSnapshot{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	snap, err := s.syncInTx(ctx, tx, userID)
	if err != nil {
		return model.ProgressSnapshot{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.ProgressSnapshot{}, fmt.Errorf("commit: %w", err)
	}
	return snap, nil
}

// GetProgress returns a learner's summary, recalculating it first so the
// response never serves a stale cache. The recalculation also heals summaries
// invalidated by out-of-band ledger changes.
func (s *ProgressService) GetProgress(ctx context.Context, userID int) (*model.ProgressSummary, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if _, err := s.SyncUser(ctx, userID); err != nil {
		return nil, err
	}
	summary, err := s.progressRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return summary, nil
}

// EnqueueRecalculateAll pushes every user onto the recalculation queue and
// returns the number queued. The worker drains the queue one learner at a
// time so a bulk recalculation never holds a long transaction.
func (s *ProgressService) EnqueueRecalculateAll(ctx context.Context) (int, error) {
	userIDs, err := s.progressRepo.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list user ids: %w", err)
	}

	for _, id := range userIDs {
		if err := s.rdb.RPush(ctx, config.WorkerKey.RecalcProgressQueue, id).Err(); err != nil {
			return 0, fmt.Errorf("enqueue user %d: %w", id, err)
		}
	}
	return len(userIDs), nil
}

// ResetProgress wipes a learner's entire history: every attempt, every answer
// (via cascade) and the summary, in one transaction. Destructive and not
// undoable.
func (s *ProgressService) ResetProgress(ctx context.Context, userID int) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.attemptRepo.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete attempts: %w", err)
	}
	if err := s.progressRepo.WithTx(tx).Reset(ctx, userID); err != nil {
		return fmt.Errorf("reset summary: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Warn().Int("user_id", userID).Msg("Learner progress reset")
	return nil
}

// DeleteAttempt removes a single attempt from the ledger and resyncs the
// owner's summary in the same transaction, so the cache never reflects a
// ledger entry that no longer exists.
func (s *ProgressService) DeleteAttempt(ctx context.Context, attemptID int) error {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get attempt: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.attemptRepo.WithTx(tx).Delete(ctx, attemptID); err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}
	if _, err := s.syncInTx(ctx, tx, attempt.UserID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
