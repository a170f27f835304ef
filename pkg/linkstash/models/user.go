package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the system. User rows are created at
// signup and never mutated by the API afterwards.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `json:"-"`

	// Relationships
	Collections []Collection `gorm:"foreignKey:UserID" json:"collections,omitempty"`
	Bookmarks   []Bookmark   `gorm:"foreignKey:UserID" json:"bookmarks,omitempty"`
	Tags        []Tag        `gorm:"foreignKey:UserID" json:"tags,omitempty"`
}
