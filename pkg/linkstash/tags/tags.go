package tags

import (
	"strings"

	"github.com/linkstashapp/linkstash-server/pkg/linkstash/models"
	"gorm.io/gorm"
)

// GetOrCreate returns the ID of the user's tag with the given name,
// creating the row if it doesn't exist yet. Concurrent duplicate requests
// are settled by the (user_id, name) unique index: if our insert loses
// the race we re-read the winner instead of erroring.
func GetOrCreate(db *gorm.DB, userID uint, name string) (uint, error) {
	var tag models.Tag
	err := db.Where(models.Tag{UserID: userID, Name: name}).FirstOrCreate(&tag).Error
	if err != nil {
		if lookupErr := db.Where("user_id = ? AND name = ?", userID, name).First(&tag).Error; lookupErr != nil {
			return 0, err
		}
	}
	return tag.ID, nil
}

// Associate links a bookmark to a tag. Linking an already-linked pair is
// a no-op.
func Associate(db *gorm.DB, bookmarkID, tagID uint) error {
	var link models.BookmarkTag
	return db.Where(models.BookmarkTag{BookmarkID: bookmarkID, TagID: tagID}).FirstOrCreate(&link).Error
}

// Apply runs get-or-create + associate for each name in order. Names are
// whitespace-trimmed; names that trim to empty are skipped, never stored.
func Apply(db *gorm.DB, userID, bookmarkID uint, names []string) error {
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		tagID, err := GetOrCreate(db, userID, name)
		if err != nil {
			return err
		}
		if err := Associate(db, bookmarkID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceAll drops every association the bookmark has, then applies the
// new name list.
func ReplaceAll(db *gorm.DB, userID, bookmarkID uint, names []string) error {
	if err := db.Where("bookmark_id = ?", bookmarkID).Delete(&models.BookmarkTag{}).Error; err != nil {
		return err
	}
	return Apply(db, userID, bookmarkID, names)
}

// NamesByBookmark resolves tag names for a set of bookmarks in one query,
// keyed by bookmark ID. Bookmarks with no tags are absent from the map.
func NamesByBookmark(db *gorm.DB, bookmarkIDs []uint) (map[uint][]string, error) {
	result := make(map[uint][]string)
	if len(bookmarkIDs) == 0 {
		return result, nil
	}

	type row struct {
		BookmarkID uint
		Name       string
	}

	var rows []row
	err := db.Table("bookmark_tags").
		Select("bookmark_tags.bookmark_id, tags.name").
		Joins("INNER JOIN tags ON tags.id = bookmark_tags.tag_id AND tags.deleted_at IS NULL").
		Where("bookmark_tags.bookmark_id IN ?", bookmarkIDs).
		Order("tags.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		result[r.BookmarkID] = append(result[r.BookmarkID], r.Name)
	}
	return result, nil
}
