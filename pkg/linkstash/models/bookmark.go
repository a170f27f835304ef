package models

import (
	"time"

	"gorm.io/gorm"
)

// BookmarkType enumerates the kinds of content a bookmark can hold.
// The UI also offers "audio" but the server has never accepted it.
type BookmarkType string

const (
	BookmarkTypeLink  BookmarkType = "link"
	BookmarkTypeText  BookmarkType = "text"
	BookmarkTypeImage BookmarkType = "image"
	BookmarkTypeVideo BookmarkType = "video"
)

// ValidBookmarkType reports whether t is one of the accepted types.
func ValidBookmarkType(t string) bool {
	switch BookmarkType(t) {
	case BookmarkTypeLink, BookmarkTypeText, BookmarkTypeImage, BookmarkTypeVideo:
		return true
	}
	return false
}

// Bookmark is the central entity: a saved link, text snippet, image or
// video, owned by exactly one user. CollectionID may reference a
// collection that no longer exists; readers treat that as uncategorized.
type Bookmark struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	CollectionID *uint          `gorm:"index" json:"collection_id"`
	Title        string         `gorm:"not null" json:"title"`
	URL          string         `json:"url"`
	Type         BookmarkType   `gorm:"type:varchar(20);default:'link'" json:"type"`
	Content      string         `json:"content"`
	Description  string         `json:"description"`
	Favorite     bool           `gorm:"default:false" json:"favorite"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
