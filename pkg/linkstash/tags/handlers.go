package tags

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/api"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/auth"
	"gorm.io/gorm"
)

// Handler handles tag-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new tags handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	BookmarkCount int    `json:"bookmark_count"`
}

// List returns the caller's tags with live bookmark counts
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	type tagWithCount struct {
		ID            uint
		Name          string
		BookmarkCount int
	}

	var results []tagWithCount
	err := h.db.Table("tags").
		Select("tags.id, tags.name, COUNT(DISTINCT bookmarks.id) as bookmark_count").
		Joins("LEFT JOIN bookmark_tags ON tags.id = bookmark_tags.tag_id").
		Joins("LEFT JOIN bookmarks ON bookmark_tags.bookmark_id = bookmarks.id AND bookmarks.deleted_at IS NULL").
		Where("tags.user_id = ? AND tags.deleted_at IS NULL", userID).
		Group("tags.id").
		Order("tags.name ASC").
		Find(&results).Error
	if err != nil {
		api.ServerError(c, "Failed to fetch tags", err)
		return
	}

	tags := make([]TagResponse, len(results))
	for i, r := range results {
		tags[i] = TagResponse{ID: r.ID, Name: r.Name, BookmarkCount: r.BookmarkCount}
	}

	api.Success(c, http.StatusOK, tags, "")
}

// RegisterRoutes registers tag routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags", h.List)
}
