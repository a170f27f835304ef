package media

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/api"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/auth"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/models"
	"gorm.io/gorm"
)

// maxFileSize caps uploads at 50MB
const maxFileSize = 50 * 1024 * 1024

// allowedMediaTypes is the MIME allow-list for both upload and serving.
// Anything else is refused regardless of who asks.
var allowedMediaTypes = []string{
	"audio/mpeg",
	"audio/wav",
	"audio/webm",
	"video/mp4",
	"video/webm",
	"video/quicktime",
}

func allowedMediaType(mtype *mimetype.MIME) bool {
	for _, t := range allowedMediaTypes {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}

// Handler handles media upload and retrieval
type Handler struct {
	db  *gorm.DB
	dir string
}

// NewHandler creates a new media handler storing files under dir
func NewHandler(db *gorm.DB, dir string) *Handler {
	return &Handler{db: db, dir: dir}
}

// Serve streams a stored media file. The filename prefix encodes the
// owning user id (format: userid_timestamp_hash.ext); the verified
// caller must match that prefix, the file must be referenced by one of
// the owner's bookmarks, and its sniffed MIME type must be on the
// allow-list.
func (h *Handler) Serve(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	// basename only, to block directory traversal
	file := filepath.Base(c.Param("file"))
	if file == "" || file == "." || file == "/" {
		api.Error(c, http.StatusBadRequest, "File not specified")
		return
	}

	fullPath := filepath.Join(h.dir, file)
	if _, err := os.Stat(fullPath); err != nil {
		api.Error(c, http.StatusNotFound, "File not found")
		return
	}

	prefix, _, found := strings.Cut(file, "_")
	ownerID, err := strconv.ParseUint(prefix, 10, 32)
	if !found || err != nil {
		api.Error(c, http.StatusForbidden, "Invalid file")
		return
	}

	if userID != uint(ownerID) {
		api.Error(c, http.StatusForbidden, "Access denied")
		return
	}

	relativePath := "uploads/media/" + file
	var bm models.Bookmark
	if err := h.db.Where("user_id = ? AND (content = ? OR url = ?)", userID, relativePath, relativePath).
		First(&bm).Error; err != nil {
		api.Error(c, http.StatusNotFound, "File not found in database")
		return
	}

	mtype, err := mimetype.DetectFile(fullPath)
	if err != nil || !allowedMediaType(mtype) {
		api.Error(c, http.StatusForbidden, "Access denied")
		return
	}

	c.Header("Content-Type", mtype.String())
	c.Header("Content-Disposition", `inline; filename="`+file+`"`)
	c.Header("Cache-Control", "public, max-age=31536000")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.File(fullPath)
}

// Upload stores a media file under a name carrying the owner's id as
// its prefix, which Serve later checks against the caller's identity.
func (h *Handler) Upload(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid file upload")
		return
	}

	if fileHeader.Size > maxFileSize {
		api.Error(c, http.StatusBadRequest, fmt.Sprintf("File too large (max %dMB)", maxFileSize/1024/1024))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid file upload")
		return
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil || !allowedMediaType(mtype) {
		api.Error(c, http.StatusBadRequest, "Invalid file MIME type")
		return
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		api.ServerError(c, "Failed to save file", err)
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		api.ServerError(c, "Failed to save file", err)
		return
	}

	name := fmt.Sprintf("%d_%d_%s%s",
		userID, time.Now().Unix(), uuid.NewString()[:8], mtype.Extension())
	fullPath := filepath.Join(h.dir, name)

	dst, err := os.Create(fullPath)
	if err != nil {
		api.ServerError(c, "Failed to save file", err)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(fullPath)
		api.ServerError(c, "Failed to save file", err)
		return
	}

	api.Success(c, http.StatusCreated, gin.H{
		"filename": name,
		"path":     "uploads/media/" + name,
	}, "File uploaded successfully")
}

// RegisterRoutes registers the upload route on an authenticated group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/media", h.Upload)
}

// RegisterServeRoutes registers the retrieval route. The group must
// carry the identity middleware; media elements that can't set headers
// authenticate via the user_id/user_email query fallback.
func (h *Handler) RegisterServeRoutes(rg *gin.RouterGroup) {
	rg.GET("/media/:file", h.Serve)
}
