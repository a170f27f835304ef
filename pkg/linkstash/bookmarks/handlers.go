package bookmarks

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/api"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/auth"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/models"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/tags"
	"gorm.io/gorm"
)

const errInvalidType = "Invalid bookmark type. Only link, text, image, and video bookmarks are allowed."

// Handler handles bookmark-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new bookmarks handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateBookmarkRequest represents the request to create a bookmark
type CreateBookmarkRequest struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Type         string   `json:"type"`
	Content      string   `json:"content"`
	Description  string   `json:"description"`
	CollectionID *uint    `json:"collection_id"`
	Tags         []string `json:"tags"`
	Favorite     bool     `json:"favorite"`
}

// UpdateBookmarkRequest is the patch body for a bookmark. Absent fields
// are left untouched. A collection_id of 0 files the bookmark as
// uncategorized; a present tags array replaces the entire tag set.
type UpdateBookmarkRequest struct {
	Title        *string  `json:"title"`
	URL          *string  `json:"url"`
	Type         *string  `json:"type"`
	Content      *string  `json:"content"`
	Description  *string  `json:"description"`
	CollectionID *uint    `json:"collection_id"`
	Favorite     *bool    `json:"favorite"`
	Tags         []string `json:"tags"`
}

func (r *UpdateBookmarkRequest) empty() bool {
	return r.Title == nil && r.URL == nil && r.Type == nil && r.Content == nil &&
		r.Description == nil && r.CollectionID == nil && r.Favorite == nil
}

// BookmarkResponse represents a bookmark in API responses, with its tag
// names and collection name resolved
type BookmarkResponse struct {
	ID             uint     `json:"id"`
	UserID         uint     `json:"user_id"`
	CollectionID   *uint    `json:"collection_id"`
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	Type           string   `json:"type"`
	Content        string   `json:"content"`
	Description    string   `json:"description"`
	Favorite       bool     `json:"favorite"`
	Tags           []string `json:"tags"`
	CollectionName *string  `json:"collection_name"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// assemble resolves tag names and collection names for a page of
// bookmarks. A collection_id pointing at a deleted collection resolves
// to a nil name, so orphaned bookmarks read as uncategorized.
func (h *Handler) assemble(userID uint, bms []models.Bookmark) ([]BookmarkResponse, error) {
	ids := make([]uint, len(bms))
	colIDSet := make(map[uint]struct{})
	for i, bm := range bms {
		ids[i] = bm.ID
		if bm.CollectionID != nil {
			colIDSet[*bm.CollectionID] = struct{}{}
		}
	}

	tagNames, err := tags.NamesByBookmark(h.db, ids)
	if err != nil {
		return nil, err
	}

	colNames := make(map[uint]string)
	if len(colIDSet) > 0 {
		colIDs := make([]uint, 0, len(colIDSet))
		for id := range colIDSet {
			colIDs = append(colIDs, id)
		}
		var cols []models.Collection
		if err := h.db.Where("user_id = ? AND id IN ?", userID, colIDs).Find(&cols).Error; err != nil {
			return nil, err
		}
		for _, col := range cols {
			colNames[col.ID] = col.Name
		}
	}

	responses := make([]BookmarkResponse, len(bms))
	for i, bm := range bms {
		resp := BookmarkResponse{
			ID:           bm.ID,
			UserID:       bm.UserID,
			CollectionID: bm.CollectionID,
			Title:        bm.Title,
			URL:          bm.URL,
			Type:         string(bm.Type),
			Content:      bm.Content,
			Description:  bm.Description,
			Favorite:     bm.Favorite,
			Tags:         []string{},
			CreatedAt:    bm.CreatedAt.Format("2006-01-02T15:04:05Z"),
			UpdatedAt:    bm.UpdatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if names, ok := tagNames[bm.ID]; ok {
			resp.Tags = names
		}
		if bm.CollectionID != nil {
			if name, ok := colNames[*bm.CollectionID]; ok {
				resp.CollectionName = &name
			}
		}
		responses[i] = resp
	}
	return responses, nil
}

// fetchOne returns one of the caller's bookmarks fully assembled
func (h *Handler) fetchOne(userID, bookmarkID uint) (*BookmarkResponse, error) {
	var bm models.Bookmark
	if err := h.db.Where("id = ? AND user_id = ?", bookmarkID, userID).First(&bm).Error; err != nil {
		return nil, err
	}
	assembled, err := h.assemble(userID, []models.Bookmark{bm})
	if err != nil {
		return nil, err
	}
	return &assembled[0], nil
}

// List returns the caller's bookmarks, most recent first. Optional
// filters: collection_id (exact), favorite=true, search (case-insensitive
// substring across title/description/content). The tag filter is applied
// after assembly against the resolved tag-name set, exact match.
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	query := h.db.Where("user_id = ?", userID).Order("created_at DESC")

	if colID := c.Query("collection_id"); colID != "" {
		query = query.Where("collection_id = ?", colID)
	}
	if c.Query("favorite") == "true" {
		query = query.Where("favorite = ?", true)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(content) LIKE ?", term, term, term)
	}

	var bms []models.Bookmark
	if err := query.Find(&bms).Error; err != nil {
		api.ServerError(c, "Failed to fetch bookmarks", err)
		return
	}

	responses, err := h.assemble(userID, bms)
	if err != nil {
		api.ServerError(c, "Failed to fetch bookmarks", err)
		return
	}

	if tag := strings.TrimSpace(c.Query("tag")); tag != "" {
		filtered := make([]BookmarkResponse, 0, len(responses))
		for _, resp := range responses {
			for _, name := range resp.Tags {
				if name == tag {
					filtered = append(filtered, resp)
					break
				}
			}
		}
		responses = filtered
	}

	api.Success(c, http.StatusOK, responses, "")
}

// Create creates a new bookmark and associates its tags
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		api.Error(c, http.StatusBadRequest, "Title is required")
		return
	}

	bmType := req.Type
	if bmType == "" {
		bmType = string(models.BookmarkTypeLink)
	}
	if !models.ValidBookmarkType(bmType) {
		api.Error(c, http.StatusBadRequest, errInvalidType)
		return
	}

	if req.CollectionID != nil && *req.CollectionID != 0 {
		var col models.Collection
		if err := h.db.Where("id = ? AND user_id = ?", *req.CollectionID, userID).First(&col).Error; err != nil {
			api.Error(c, http.StatusBadRequest, "Invalid collection")
			return
		}
	} else {
		req.CollectionID = nil
	}

	bm := models.Bookmark{
		UserID:       userID,
		CollectionID: req.CollectionID,
		Title:        title,
		URL:          strings.TrimSpace(req.URL),
		Type:         models.BookmarkType(bmType),
		Content:      req.Content,
		Description:  strings.TrimSpace(req.Description),
		Favorite:     req.Favorite,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bm).Error; err != nil {
			return err
		}
		return tags.Apply(tx, userID, bm.ID, req.Tags)
	})
	if err != nil {
		api.ServerError(c, "Failed to create bookmark", err)
		return
	}

	full, err := h.fetchOne(userID, bm.ID)
	if err != nil {
		api.ServerError(c, "Failed to load bookmark", err)
		return
	}

	api.Success(c, http.StatusCreated, full, "Bookmark created successfully")
}

// Update applies a partial update to a bookmark the caller owns.
// Ownership is checked before the patch body is read.
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	bmID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Bookmark ID required")
		return
	}

	var bm models.Bookmark
	if err := h.db.Where("id = ? AND user_id = ?", bmID, userID).First(&bm).Error; err != nil {
		api.Error(c, http.StatusNotFound, "Bookmark not found")
		return
	}

	var req UpdateBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.empty() && req.Tags == nil {
		api.Error(c, http.StatusBadRequest, "No fields to update")
		return
	}

	if req.Type != nil && !models.ValidBookmarkType(*req.Type) {
		api.Error(c, http.StatusBadRequest, errInvalidType)
		return
	}

	if req.Title != nil {
		bm.Title = strings.TrimSpace(*req.Title)
	}
	if req.URL != nil {
		bm.URL = strings.TrimSpace(*req.URL)
	}
	if req.Type != nil {
		bm.Type = models.BookmarkType(*req.Type)
	}
	if req.Content != nil {
		bm.Content = *req.Content
	}
	if req.Description != nil {
		bm.Description = strings.TrimSpace(*req.Description)
	}
	if req.CollectionID != nil {
		if *req.CollectionID == 0 {
			bm.CollectionID = nil
		} else {
			bm.CollectionID = req.CollectionID
		}
	}
	if req.Favorite != nil {
		bm.Favorite = *req.Favorite
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&bm).Error; err != nil {
			return err
		}
		if req.Tags != nil {
			return tags.ReplaceAll(tx, userID, bm.ID, req.Tags)
		}
		return nil
	})
	if err != nil {
		api.ServerError(c, "Failed to update bookmark", err)
		return
	}

	api.Success(c, http.StatusOK, nil, "Bookmark updated successfully")
}

// Delete removes a bookmark the caller owns. A missing id and an id
// owned by someone else are deliberately indistinguishable.
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	bmID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Bookmark ID required")
		return
	}

	result := h.db.Where("id = ? AND user_id = ?", bmID, userID).Delete(&models.Bookmark{})
	if result.Error != nil {
		api.ServerError(c, "Failed to delete bookmark", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		api.Error(c, http.StatusNotFound, "Bookmark not found")
		return
	}

	api.Success(c, http.StatusOK, nil, "Bookmark deleted successfully")
}

// RegisterRoutes registers bookmark routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookmarks", h.List)
	rg.POST("/bookmarks", h.Create)
	rg.PUT("/bookmarks/:id", h.Update)
	rg.DELETE("/bookmarks/:id", h.Delete)
}
