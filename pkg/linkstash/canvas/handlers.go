package canvas

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/api"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/auth"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/models"
	"gorm.io/gorm"
)

// Handler handles canvas overlay requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new canvas handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// PositionInput is one node placement in a canvas save
type PositionInput struct {
	BookmarkID uint    `json:"bookmark_id"`
	X          float64 `json:"x_position"`
	Y          float64 `json:"y_position"`
}

// ConnectionInput is one directed edge in a canvas save
type ConnectionInput struct {
	FromBookmarkID uint   `json:"from_bookmark_id"`
	ToBookmarkID   uint   `json:"to_bookmark_id"`
	Label          string `json:"label"`
}

// SaveCanvasRequest is the full-replace payload: clients send the entire
// current layout every save, never a diff
type SaveCanvasRequest struct {
	Positions   []PositionInput   `json:"positions"`
	Connections []ConnectionInput `json:"connections"`
}

// CanvasResponse holds one collection's stored layout
type CanvasResponse struct {
	Positions   []models.CanvasPosition   `json:"positions"`
	Connections []models.CanvasConnection `json:"connections"`
}

// ownedBookmarkIDs snapshots the ids of every bookmark the caller owns.
// This set is the authorization boundary for everything the canvas
// stores: rows referencing any other bookmark are never read or written.
func (h *Handler) ownedBookmarkIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := h.db.Model(&models.Bookmark{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

// Get returns the stored positions and connections for one collection's
// canvas, restricted to bookmarks the caller owns. A caller with no
// bookmarks gets empty sets without the canvas tables being queried.
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	colID, err := strconv.ParseUint(c.Param("collectionId"), 10, 32)
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Collection ID required")
		return
	}

	resp := CanvasResponse{
		Positions:   []models.CanvasPosition{},
		Connections: []models.CanvasConnection{},
	}

	bookmarkIDs, err := h.ownedBookmarkIDs(userID)
	if err != nil {
		api.ServerError(c, "Server error", err)
		return
	}
	if len(bookmarkIDs) == 0 {
		api.Success(c, http.StatusOK, resp, "")
		return
	}

	err = h.db.Where("collection_id = ? AND bookmark_id IN ?", colID, bookmarkIDs).
		Find(&resp.Positions).Error
	if err != nil {
		api.ServerError(c, "Server error", err)
		return
	}

	err = h.db.Where("collection_id = ? AND from_bookmark_id IN ? AND to_bookmark_id IN ?", colID, bookmarkIDs, bookmarkIDs).
		Find(&resp.Connections).Error
	if err != nil {
		api.ServerError(c, "Server error", err)
		return
	}

	api.Success(c, http.StatusOK, resp, "")
}

// Save replaces one collection's entire canvas. Existing rows that
// reference the caller's bookmarks are deleted first, then the incoming
// sets are inserted with any position or connection touching a foreign
// bookmark filtered out. Filtering before insert is what guarantees no
// row is ever persisted against another user's bookmark, whatever the
// client sends.
func (h *Handler) Save(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	colID, err := strconv.ParseUint(c.Param("collectionId"), 10, 32)
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Collection ID required")
		return
	}

	var req SaveCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	bookmarkIDs, err := h.ownedBookmarkIDs(userID)
	if err != nil {
		api.ServerError(c, "Server error", err)
		return
	}
	if len(bookmarkIDs) == 0 {
		api.Success(c, http.StatusOK, nil, "Canvas data saved successfully")
		return
	}

	owned := make(map[uint]bool, len(bookmarkIDs))
	for _, id := range bookmarkIDs {
		owned[id] = true
	}

	positions := make([]models.CanvasPosition, 0, len(req.Positions))
	for _, pos := range req.Positions {
		if !owned[pos.BookmarkID] {
			continue
		}
		positions = append(positions, models.CanvasPosition{
			BookmarkID:   pos.BookmarkID,
			CollectionID: uint(colID),
			X:            pos.X,
			Y:            pos.Y,
		})
	}

	connections := make([]models.CanvasConnection, 0, len(req.Connections))
	for _, conn := range req.Connections {
		if !owned[conn.FromBookmarkID] || !owned[conn.ToBookmarkID] {
			continue
		}
		connections = append(connections, models.CanvasConnection{
			FromBookmarkID: conn.FromBookmarkID,
			ToBookmarkID:   conn.ToBookmarkID,
			CollectionID:   uint(colID),
			Label:          conn.Label,
		})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ? AND bookmark_id IN ?", colID, bookmarkIDs).
			Delete(&models.CanvasPosition{}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection_id = ? AND from_bookmark_id IN ?", colID, bookmarkIDs).
			Delete(&models.CanvasConnection{}).Error; err != nil {
			return err
		}
		if len(positions) > 0 {
			if err := tx.Create(&positions).Error; err != nil {
				return err
			}
		}
		if len(connections) > 0 {
			if err := tx.Create(&connections).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		api.ServerError(c, "Failed to save canvas data", err)
		return
	}

	api.Success(c, http.StatusOK, nil, "Canvas data saved successfully")
}

// RegisterRoutes registers canvas routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/canvas/:collectionId", h.Get)
	rg.PUT("/canvas/:collectionId", h.Save)
}
