package repository

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
	domainRepo "github.com/furukawa1020/furukawalabo1/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type workRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWorkRepository creates a new work repository
func NewWorkRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WorkRepository {
	return &workRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts the work or refreshes the mutable fields of an existing
// row with the same external id
func (r *workRepository) Upsert(ctx context.Context, work *model.Work) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "summary", "thumbnail_url", "like_count", "tags", "updated_at",
			}),
		}).
		Create(work).Error
	if err != nil {
		r.logger.Error("Failed to upsert work",
			zap.String("external_id", work.ExternalID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert work: %w", err)
	}

	return nil
}

// List returns all works, newest published first
func (r *workRepository) List(ctx context.Context) ([]model.Work, error) {
	var works []model.Work

	err := r.db.WithContext(ctx).
		Order("published_at DESC NULLS LAST").
		Find(&works).Error
	if err != nil {
		r.logger.Error("Failed to list works", zap.Error(err))
		return nil, fmt.Errorf("failed to list works: %w", err)
	}

	return works, nil
}

// GetByExternalID returns a single work by its external id
func (r *workRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Work, error) {
	var work model.Work

	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&work).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrWorkNotFound
		}
		r.logger.Error("Failed to get work",
			zap.String("external_id", externalID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get work: %w", err)
	}

	return &work, nil
}
