package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := createExtensions(db); err != nil {
		logger.Error("Failed to create extensions", zap.Error(err))
		return err
	}

	if err := db.AutoMigrate(
		&model.Donation{},
		&model.Question{},
		&model.Work{},
	); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

func createExtensions(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error
}

// createCustomIndexes creates indexes GORM does not handle automatically
func createCustomIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_donations_amount ON donations (amount DESC) WHERE status = 'succeeded'`).Error; err != nil {
		return err
	}

	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_questions_status_created ON questions (status, created_at DESC)`).Error; err != nil {
		return err
	}

	return nil
}
