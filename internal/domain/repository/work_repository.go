package repository

import (
	"context"

	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
)

// WorkRepository persists and reads portfolio works
type WorkRepository interface {
	// Upsert inserts the work or, when a row with the same external id
	// exists, refreshes its mutable fields.
	Upsert(ctx context.Context, work *model.Work) error

	// List returns all works, newest published first.
	List(ctx context.Context) ([]model.Work, error)

	// GetByExternalID returns a single work. Returns
	// errors.ErrWorkNotFound when no row matches.
	GetByExternalID(ctx context.Context, externalID string) (*model.Work, error)
}
