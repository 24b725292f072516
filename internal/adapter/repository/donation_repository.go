package repository

import (
	"context"
	"fmt"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
	domainRepo "github.com/furukawa1020/furukawalabo1/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type donationRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *gorm.DB, logger *zap.Logger) domainRepo.DonationRepository {
	return &donationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a donation. Deduplication relies on the unique index on
// transaction_id: ON CONFLICT DO NOTHING plus a zero rows-affected check,
// so two concurrent deliveries of the same transaction collapse to one row
// without a check-then-insert race.
func (r *donationRepository) Create(ctx context.Context, donation *model.Donation) error {
	tx := r.db.WithContext(ctx)

	if donation.TransactionID != nil {
		tx = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		})
	}

	result := tx.Create(donation)
	if result.Error != nil {
		r.logger.Error("Failed to create donation",
			zap.Stringp("transaction_id", donation.TransactionID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to create donation: %w", result.Error)
	}

	if donation.TransactionID != nil && result.RowsAffected == 0 {
		return domainErrors.ErrDuplicateTransaction
	}

	return nil
}

// GetRecent returns succeeded donations, newest first
func (r *donationRepository) GetRecent(ctx context.Context, limit int) ([]model.Donation, error) {
	var donations []model.Donation

	err := r.db.WithContext(ctx).
		Where("status = ?", model.DonationStatusSucceeded).
		Order("created_at DESC").
		Limit(limit).
		Find(&donations).Error
	if err != nil {
		r.logger.Error("Failed to get recent donations", zap.Error(err))
		return nil, fmt.Errorf("failed to get recent donations: %w", err)
	}

	return donations, nil
}

// GetTop returns succeeded donations, largest amount first
func (r *donationRepository) GetTop(ctx context.Context, limit int) ([]model.Donation, error) {
	var donations []model.Donation

	err := r.db.WithContext(ctx).
		Where("status = ?", model.DonationStatusSucceeded).
		Order("amount DESC").
		Limit(limit).
		Find(&donations).Error
	if err != nil {
		r.logger.Error("Failed to get top donations", zap.Error(err))
		return nil, fmt.Errorf("failed to get top donations: %w", err)
	}

	return donations, nil
}

// GetStats aggregates succeeded donations
func (r *donationRepository) GetStats(ctx context.Context) (*model.DonationStats, error) {
	var stats model.DonationStats

	err := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Where("status = ?", model.DonationStatusSucceeded).
		Select("COALESCE(SUM(amount), 0) AS total_amount, COUNT(*) AS total_count").
		Scan(&stats).Error
	if err != nil {
		r.logger.Error("Failed to get donation stats", zap.Error(err))
		return nil, fmt.Errorf("failed to get donation stats: %w", err)
	}

	return &stats, nil
}
