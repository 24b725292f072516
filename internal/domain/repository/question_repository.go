package repository

import (
	"context"

	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
)

// QuestionRepository persists and reads Q&A inbox entries
type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error

	// ListByStatus returns questions with the given status, newest first.
	ListByStatus(ctx context.Context, status model.QuestionStatus, limit int) ([]model.Question, error)

	// UpdateStatus transitions a question to the given status. Returns
	// errors.ErrQuestionNotFound when no row matches.
	UpdateStatus(ctx context.Context, id int64, status model.QuestionStatus) error
}
