package models

import (
	"time"

	"gorm.io/gorm"
)

// Tag is a user-scoped label. Names are unique per user; tags are created
// lazily on first use and may outlive their last bookmark association.
type Tag struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_user_tag_name" json:"user_id"`
	Name      string         `gorm:"not null;uniqueIndex:idx_user_tag_name" json:"name"`
}

// BookmarkTag links a bookmark to a tag. The unique index makes
// re-associating the same pair a no-op.
type BookmarkTag struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	BookmarkID uint      `gorm:"not null;uniqueIndex:idx_bookmark_tag" json:"bookmark_id"`
	TagID      uint      `gorm:"not null;uniqueIndex:idx_bookmark_tag" json:"tag_id"`

	// Relationships
	Bookmark Bookmark `gorm:"foreignKey:BookmarkID" json:"bookmark,omitempty"`
	Tag      Tag      `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}
