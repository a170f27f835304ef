package models

import (
	"time"

	"gorm.io/gorm"
)

// Collection is a named folder for bookmarks. Collections form a forest
// per user via the nullable ParentID pointer. Deleting a collection does
// not touch its bookmarks; their collection_id simply stops resolving and
// they read back as uncategorized.
type Collection struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Name      string         `gorm:"not null" json:"name"`
	ParentID  *uint          `json:"parent_id"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
