package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/furukawa1020/furukawalabo1/pkg/messaging"

	"github.com/furukawa1020/furukawalabo1/internal/config"
	"github.com/furukawa1020/furukawalabo1/internal/infrastructure/database"
	httpServer "github.com/furukawa1020/furukawalabo1/internal/infrastructure/http"
	"github.com/furukawa1020/furukawalabo1/internal/realtime"
)

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

	// Run database migrations
	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, logger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to Redis. Without it the service still runs, with
	// process-local presence and fan-out only.
	var redisClient messaging.RedisClient
	var presence realtime.PresenceCounter
	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	redisClient, err = messaging.NewRedisClient(redisAddr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to local presence", zap.Error(err))
		redisClient = nil
		presence = realtime.NewLocalPresenceCounter()
	} else {
		defer redisClient.Close()
		presence = realtime.NewRedisPresenceCounter(redisClient, "online_users")
	}

	// Initialize the realtime hub and bridge the shared channel into it
	hub := realtime.NewHub(presence, logger)
	if redisClient != nil {
		bridge := realtime.NewBridge(redisClient, hub, realtime.Channel, logger)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				logger.Error("Realtime bridge stopped with error", zap.Error(err))
			}
		}()
	}

	// Initialize and start the HTTP server
	httpSrv := httpServer.NewServer(cfg, logger, repos, redisClient, hub)

	go func() {
		if err := httpSrv.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	logger.Info("Server shut down successfully")
}
