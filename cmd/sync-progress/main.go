package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kursio/kursio-backend/internal/config"
	"github.com/kursio/kursio-backend/internal/database"
	"github.com/kursio/kursio-backend/internal/logger"
	"github.com/kursio/kursio-backend/internal/repository"
	"github.com/kursio/kursio-backend/internal/service"
)

// sync-progress replays the attempt ledger and rewrites the progress summary
// for one learner (-user) or every learner. Run it after manual ledger
// surgery or a restore to bring the summaries back in line.
func main() {
	var userID int
	flag.IntVar(&userID, "user", 0, "Sync a single user ID (0 = all users)")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	userRepo := repository.NewUserRepository(pool)
	videoRepo := repository.NewVideoRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)
	progressService := service.NewProgressService(pool, userRepo, videoRepo, attemptRepo, progressRepo, rdb)

	// ─── Sync ──────────────────────────────────────────────────────────
	if userID > 0 {
		if _, err := progressService.SyncUser(ctx, userID); err != nil {
			log.Fatal().Err(err).Int("user_id", userID).Msg("Sync failed")
		}
		fmt.Printf("Synced progress for user %d\n", userID)
		return
	}

	userIDs, err := progressRepo.ListUserIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list users")
	}

	failed := 0
	for _, id := range userIDs {
		if _, err := progressService.SyncUser(ctx, id); err != nil {
			log.Error().Err(err).Int("user_id", id).Msg("Sync failed")
			failed++
		}
	}

	fmt.Printf("Synced %d users, %d failures\n", len(userIDs)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
