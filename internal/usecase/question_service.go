package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/furukawa1020/furukawalabo1/pkg/errors"

	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
	domainRepo "github.com/furukawa1020/furukawalabo1/internal/domain/repository"
)

const questionListLimit = 50

// SubmitQuestionRequest is the public question-box submission
type SubmitQuestionRequest struct {
	Content       string `json:"content" validate:"required,max=1000"`
	TwitterHandle string `json:"twitter_handle" validate:"omitempty,max=64"`
}

// QuestionService handles the Q&A inbox business logic
type QuestionService struct {
	questionRepo domainRepo.QuestionRepository
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewQuestionService creates a new question service instance
func NewQuestionService(questionRepo domainRepo.QuestionRepository, logger *zap.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		validate:     validator.New(),
		logger:       logger,
	}
}

// Submit stores a new question in pending state. The sender IP is kept
// for abuse follow-up but never serialized in API responses.
func (s *QuestionService) Submit(ctx context.Context, req *SubmitQuestionRequest, ipAddress string) (*model.Question, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidArgument, "invalid question", err)
	}

	question := &model.Question{
		Content:   req.Content,
		Status:    model.QuestionStatusPending,
		IPAddress: ipAddress,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if req.TwitterHandle != "" {
		handle := req.TwitterHandle
		question.TwitterHandle = &handle
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		s.logger.Error("Failed to store question", zap.Error(err))
		return nil, fmt.Errorf("failed to store question: %w", err)
	}

	s.logger.Info("Question submitted", zap.Int64("question_id", question.ID))
	return question, nil
}

// ListByStatus returns questions in the given state, newest first
func (s *QuestionService) ListByStatus(ctx context.Context, status model.QuestionStatus) ([]model.Question, error) {
	if !status.Valid() {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidArgument, fmt.Sprintf("unknown question status: %s", status), nil)
	}

	questions, err := s.questionRepo.ListByStatus(ctx, status, questionListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// Moderate transitions a pending question to answered or rejected
func (s *QuestionService) Moderate(ctx context.Context, id int64, status model.QuestionStatus) error {
	if status != model.QuestionStatusAnswered && status != model.QuestionStatusRejected {
		return appErrors.NewAppError(appErrors.ErrInvalidArgument, fmt.Sprintf("invalid moderation status: %s", status), nil)
	}

	if err := s.questionRepo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	s.logger.Info("Question moderated",
		zap.Int64("question_id", id),
		zap.String("status", string(status)))
	return nil
}
