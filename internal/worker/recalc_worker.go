package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kursio/kursio-backend/internal/config"
	"github.com/kursio/kursio-backend/internal/service"
)

const RecalcPollTimeout = 1 * time.Second

// RecalcWorker drains the progress recalculation queue. Each queue item is a
// single user ID; learners are replayed independently, so a failure on one
// never blocks the rest.
type RecalcWorker struct {
	progress *service.ProgressService
	rdb      *redis.Client
	log      zerolog.Logger
}

func NewRecalcWorker(progress *service.ProgressService, rdb *redis.Client, log zerolog.Logger) *RecalcWorker {
	return &RecalcWorker{
		progress: progress,
		rdb:      rdb,
		log:      log.With().Str("component", "recalc_worker").Logger(),
	}
}

func (w *RecalcWorker) Start(ctx context.Context) {
	w.log.Info().Msg("RecalcWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Draining recalc queue...")
			w.drain()
			return

		default:
			item, err := w.rdb.BLPop(ctx, RecalcPollTimeout, config.WorkerKey.RecalcProgressQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}
			w.recalcOne(ctx, item[1])
		}
	}
}

// drain processes whatever is left in the queue without blocking, so an
// admin-triggered bulk recalculation survives a restart mid-run. Bounded by
// the queue length at shutdown time; requeued failures wait for the next boot.
func (w *RecalcWorker) drain() {
	ctx := context.Background()
	n, err := w.rdb.LLen(ctx, config.WorkerKey.RecalcProgressQueue).Result()
	if err != nil {
		w.log.Error().Err(err).Msg("LLen error during drain")
		return
	}
	for i := int64(0); i < n; i++ {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.RecalcProgressQueue).Result()
		if err != nil {
			if err != redis.Nil {
				w.log.Error().Err(err).Msg("LPop error during drain")
			}
			return
		}
		w.recalcOne(ctx, raw)
	}
}

func (w *RecalcWorker) recalcOne(ctx context.Context, raw string) {
	userID, err := strconv.Atoi(raw)
	if err != nil {
		w.log.Error().Str("payload", raw).Msg("Invalid queue payload")
		return
	}

	if _, err := w.progress.SyncUser(ctx, userID); err != nil {
		// Requeue so a transient DB failure doesn't lose the learner.
		w.log.Error().Err(err).Int("user_id", userID).Msg("Recalc failed, requeueing")
		w.rdb.RPush(ctx, config.WorkerKey.RecalcProgressQueue, userID)
		return
	}
	w.log.Debug().Int("user_id", userID).Msg("Progress recalculated")
}
