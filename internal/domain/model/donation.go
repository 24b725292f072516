package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// DonationStatus represents the settlement status of a donation
type DonationStatus string

const (
	// DonationStatusSucceeded is the only status written by the current flows.
	DonationStatusSucceeded DonationStatus = "succeeded"
)

// Scan implements sql.Scanner interface
func (s *DonationStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = DonationStatus(v)
	case []byte:
		*s = DonationStatus(v)
	default:
		*s = DonationStatusSucceeded
	}
	return nil
}

// Value implements driver.Valuer interface
func (s DonationStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Donation represents one recorded act of financial support.
//
// TransactionID is the provider-supplied idempotency key. It is nullable
// only for the legacy card flow, which keys on the payment-intent id
// instead. The unique index on it is what makes concurrent duplicate
// webhook deliveries safe; application code must not rely on a
// check-then-insert sequence alone.
type Donation struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID *string        `gorm:"uniqueIndex;size:255" json:"transaction_id,omitempty"`
	Amount        int64          `gorm:"not null" json:"amount"`
	Currency      string         `gorm:"not null;size:8" json:"currency"`
	Status        DonationStatus `gorm:"not null;size:32;index" json:"status"`
	DonorName     string         `gorm:"not null;size:255" json:"donor_name"`
	Message       *string        `json:"message,omitempty"`
	Payload       JSONB          `gorm:"type:jsonb" json:"-"`
	CreatedAt     time.Time      `gorm:"default:now();index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Donation) TableName() string {
	return "donations"
}

// DonationStats aggregates succeeded donations for the public read model
type DonationStats struct {
	TotalAmount int64 `json:"total_amount"`
	TotalCount  int64 `json:"total_count"`
}
