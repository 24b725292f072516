package model

import (
	"database/sql/driver"
	"time"
)

// QuestionStatus represents the review status of an inbox question
type QuestionStatus string

const (
	QuestionStatusPending  QuestionStatus = "pending"
	QuestionStatusAnswered QuestionStatus = "answered"
	QuestionStatusRejected QuestionStatus = "rejected"
)

// Valid reports whether the status is one of the known values
func (s QuestionStatus) Valid() bool {
	switch s {
	case QuestionStatusPending, QuestionStatusAnswered, QuestionStatusRejected:
		return true
	}
	return false
}

// Scan implements sql.Scanner interface
func (s *QuestionStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = QuestionStatus(v)
	case []byte:
		*s = QuestionStatus(v)
	default:
		*s = QuestionStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s QuestionStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Question is a public Q&A inbox entry
type Question struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Content       string         `gorm:"not null" json:"content"`
	TwitterHandle *string        `gorm:"size:255" json:"twitter_handle,omitempty"`
	Status        QuestionStatus `gorm:"not null;size:32;default:'pending';index" json:"status"`
	IPAddress     string         `gorm:"size:64" json:"-"`
	CreatedAt     time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Question) TableName() string {
	return "questions"
}
