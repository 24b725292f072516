package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/furukawa1020/furukawalabo1/internal/config"
	"github.com/furukawa1020/furukawalabo1/internal/infrastructure/database"
	"github.com/furukawa1020/furukawalabo1/internal/usecase"
)

// One-shot Protopedia sync, for cron and manual runs
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := cfg.Logger
	defer logger.Sync()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, logger); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run migrations
	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, logger)

	// No cache client here; the server's cached list expires on its own TTL
	workService := usecase.NewWorkService(repos.Work, nil, logger)
	syncService := usecase.NewWorkSyncService(
		repos.Work,
		workService,
		logger,
		cfg.Sync.BaseURL,
		cfg.Sync.WorkIDs,
		cfg.Sync.Delay,
		cfg.Sync.FetchTimeout,
	)

	result, err := syncService.Sync(context.Background())
	if err != nil {
		logger.Fatal("Sync failed", zap.Error(err))
	}

	logger.Info("Sync completed",
		zap.Int("synced", result.Synced),
		zap.Int("failed", result.Failed),
		zap.Int("total", result.Total))
}
