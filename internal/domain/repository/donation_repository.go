package repository

import (
	"context"

	"github.com/furukawa1020/furukawalabo1/internal/domain/model"
)

// DonationRepository persists and reads donation records
type DonationRepository interface {
	// Create inserts a new donation. When the donation carries a
	// transaction id that is already recorded, it returns
	// errors.ErrDuplicateTransaction and writes nothing; the storage
	// layer's unique index is the authority, so concurrent duplicate
	// deliveries are safe.
	Create(ctx context.Context, donation *model.Donation) error

	// GetRecent returns succeeded donations, newest first.
	GetRecent(ctx context.Context, limit int) ([]model.Donation, error)

	// GetTop returns succeeded donations, largest amount first.
	GetTop(ctx context.Context, limit int) ([]model.Donation, error)

	// GetStats aggregates succeeded donations.
	GetStats(ctx context.Context) (*model.DonationStats, error)
}
