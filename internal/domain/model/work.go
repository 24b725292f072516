package model

import (
	"time"
)

// Work is a portfolio entry mirrored from Protopedia
type Work struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID   string     `gorm:"uniqueIndex;not null;size:255" json:"external_id"`
	Title        string     `gorm:"not null" json:"title"`
	Summary      string     `json:"summary"`
	URL          string     `json:"url"`
	ThumbnailURL string     `json:"thumbnail_url"`
	LikeCount    int        `gorm:"default:0" json:"like_count"`
	Source       string     `gorm:"size:64;default:'protopedia'" json:"source"`
	Tags         StringList `gorm:"type:jsonb" json:"tags"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Work) TableName() string {
	return "works"
}
