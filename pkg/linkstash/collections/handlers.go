package collections

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/api"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/auth"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/models"
	"gorm.io/gorm"
)

// Handler handles collection-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new collections handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateCollectionRequest represents the request to create a collection
type CreateCollectionRequest struct {
	Name     string `json:"name"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCollectionRequest is the patch body for a collection. Absent
// fields are left untouched; parent_id of 0 moves the collection to the
// root of the forest.
type UpdateCollectionRequest struct {
	Name     *string `json:"name"`
	ParentID *uint   `json:"parent_id"`
}

// CollectionResponse represents a collection node in API responses
type CollectionResponse struct {
	ID            uint                  `json:"id"`
	UserID        uint                  `json:"user_id"`
	Name          string                `json:"name"`
	ParentID      *uint                 `json:"parent_id"`
	BookmarkCount int                   `json:"bookmark_count"`
	CreatedAt     string                `json:"created_at"`
	UpdatedAt     string                `json:"updated_at"`
	Children      []*CollectionResponse `json:"children"`
}

func collectionToResponse(col models.Collection, bookmarkCount int) *CollectionResponse {
	return &CollectionResponse{
		ID:            col.ID,
		UserID:        col.UserID,
		Name:          col.Name,
		ParentID:      col.ParentID,
		BookmarkCount: bookmarkCount,
		CreatedAt:     col.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     col.UpdatedAt.Format("2006-01-02T15:04:05Z"),
		Children:      []*CollectionResponse{},
	}
}

// List returns the caller's collections assembled into a forest, each
// node carrying a live count of the bookmarks filed under it. A node
// whose declared parent is missing (deleted, or never owned by this
// user) is surfaced as a root rather than dropped; nothing is rewritten
// in storage.
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var cols []models.Collection
	if err := h.db.Where("user_id = ?", userID).Order("name ASC").Find(&cols).Error; err != nil {
		api.ServerError(c, "Failed to fetch collections", err)
		return
	}

	counts, err := h.bookmarkCounts(userID)
	if err != nil {
		api.ServerError(c, "Failed to fetch collections", err)
		return
	}

	indexed := make(map[uint]*CollectionResponse, len(cols))
	for _, col := range cols {
		indexed[col.ID] = collectionToResponse(col, counts[col.ID])
	}

	tree := []*CollectionResponse{}
	for _, col := range cols {
		node := indexed[col.ID]
		if col.ParentID != nil {
			if parent, ok := indexed[*col.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		tree = append(tree, node)
	}

	api.Success(c, http.StatusOK, tree, "")
}

// bookmarkCounts returns bookmark counts per collection for one user
func (h *Handler) bookmarkCounts(userID uint) (map[uint]int, error) {
	type countRow struct {
		CollectionID *uint
		N            int
	}

	var rows []countRow
	err := h.db.Model(&models.Bookmark{}).
		Select("collection_id, COUNT(*) as n").
		Where("user_id = ?", userID).
		Group("collection_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		if r.CollectionID != nil {
			counts[*r.CollectionID] = r.N
		}
	}
	return counts, nil
}

// Create creates a new collection, optionally under a parent the caller owns
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		api.Error(c, http.StatusBadRequest, "Collection name is required")
		return
	}

	if req.ParentID != nil && *req.ParentID != 0 {
		var parent models.Collection
		if err := h.db.Where("id = ? AND user_id = ?", *req.ParentID, userID).First(&parent).Error; err != nil {
			api.Error(c, http.StatusBadRequest, "Invalid parent collection")
			return
		}
	} else {
		req.ParentID = nil
	}

	col := models.Collection{
		UserID:   userID,
		Name:     name,
		ParentID: req.ParentID,
	}
	if err := h.db.Create(&col).Error; err != nil {
		api.ServerError(c, "Failed to create collection", err)
		return
	}

	api.Success(c, http.StatusCreated, collectionToResponse(col, 0), "Collection created successfully")
}

// Update applies a partial update to a collection the caller owns.
// The new parent is not checked for cycles; a collection moved under its
// own descendant stays reachable because listing treats unresolvable
// parents as roots.
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	colID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Collection ID required")
		return
	}

	var col models.Collection
	if err := h.db.Where("id = ? AND user_id = ?", colID, userID).First(&col).Error; err != nil {
		api.Error(c, http.StatusNotFound, "Collection not found")
		return
	}

	var req UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Name == nil && req.ParentID == nil {
		api.Error(c, http.StatusBadRequest, "No fields to update")
		return
	}

	if req.Name != nil {
		col.Name = strings.TrimSpace(*req.Name)
	}
	if req.ParentID != nil {
		if *req.ParentID == 0 {
			col.ParentID = nil
		} else {
			col.ParentID = req.ParentID
		}
	}

	if err := h.db.Save(&col).Error; err != nil {
		api.ServerError(c, "Failed to update collection", err)
		return
	}

	api.Success(c, http.StatusOK, nil, "Collection updated successfully")
}

// Delete removes a collection the caller owns. Bookmarks filed under it
// are left in place with their now-dangling collection_id; they read
// back as uncategorized.
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	colID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Collection ID required")
		return
	}

	result := h.db.Where("id = ? AND user_id = ?", colID, userID).Delete(&models.Collection{})
	if result.Error != nil {
		api.ServerError(c, "Failed to delete collection", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		api.Error(c, http.StatusNotFound, "Collection not found")
		return
	}

	api.Success(c, http.StatusOK, nil, "Collection deleted successfully")
}

// RegisterRoutes registers collection routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/collections", h.List)
	rg.POST("/collections", h.Create)
	rg.PUT("/collections/:id", h.Update)
	rg.DELETE("/collections/:id", h.Delete)
}
