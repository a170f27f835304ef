package models

import "time"

// CanvasPosition stores where a bookmark sits on one collection's canvas.
// One position per (bookmark, collection) pair; saves are whole-canvas
// replacements, so rows are hard-deleted and reinserted.
type CanvasPosition struct {
	ID           uint      `gorm:"primarykey" json:"-"`
	CreatedAt    time.Time `json:"-"`
	BookmarkID   uint      `gorm:"not null;uniqueIndex:idx_canvas_bookmark_collection" json:"bookmark_id"`
	CollectionID uint      `gorm:"not null;uniqueIndex:idx_canvas_bookmark_collection;index" json:"-"`
	X            float64   `gorm:"column:x_position" json:"x_position"`
	Y            float64   `gorm:"column:y_position" json:"y_position"`
}

// CanvasConnection is a directed, labeled edge between two bookmarks on
// one collection's canvas.
type CanvasConnection struct {
	ID             uint      `gorm:"primarykey" json:"-"`
	CreatedAt      time.Time `json:"-"`
	FromBookmarkID uint      `gorm:"not null;index" json:"from_bookmark_id"`
	ToBookmarkID   uint      `gorm:"not null" json:"to_bookmark_id"`
	CollectionID   uint      `gorm:"not null;index" json:"-"`
	Label          string    `json:"label"`
}
