package repository

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/furukawa1020/furukawalabo1/internal/domain/errors"
	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
	domainRepo "github.com/furukawa1020/furukawalabo1/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type questionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.QuestionRepository {
	return &questionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new inbox question
func (r *questionRepository) Create(ctx context.Context, question *model.Question) error {
	if err := r.db.WithContext(ctx).Create(question).Error; err != nil {
		r.logger.Error("Failed to create question", zap.Error(err))
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// ListByStatus returns questions with the given status, newest first
func (r *questionRepository) ListByStatus(ctx context.Context, status model.QuestionStatus, limit int) ([]model.Question, error) {
	var questions []model.Question

	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		r.logger.Error("Failed to list questions",
			zap.String("status", string(status)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, nil
}

// UpdateStatus transitions a question to the given status
func (r *questionRepository) UpdateStatus(ctx context.Context, id int64, status model.QuestionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to update question status",
			zap.Int64("question_id", id),
			zap.String("status", string(status)),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update question status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domainErrors.ErrQuestionNotFound
	}

	return nil
}
