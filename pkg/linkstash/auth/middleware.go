package auth

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/api"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/models"
	"gorm.io/gorm"
)

const (
	// HeaderUserID carries the claimed numeric user id
	HeaderUserID = "X-User-Id"
	// HeaderUserEmail carries the claimed email
	HeaderUserEmail = "X-User-Email"
	// ContextKeyUserID is the key for the verified user ID in gin context
	ContextKeyUserID = "user_id"
)

// VerifyIdentity checks a claimed (id, email) pair against the users
// table and returns the verified user ID. Every failure mode — missing
// value, non-numeric or non-positive id, no matching row — collapses to
// the same negative result so callers can't probe which part was wrong.
func VerifyIdentity(db *gorm.DB, idValue, email string) (uint, bool) {
	if idValue == "" || email == "" {
		return 0, false
	}

	id, err := strconv.ParseUint(idValue, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}

	var user models.User
	if err := db.Select("id").Where("id = ? AND email = ?", uint(id), email).First(&user).Error; err != nil {
		return 0, false
	}

	return user.ID, true
}

// Identity is the stateless authentication middleware. Identity is
// claimed per request via the X-User-Id / X-User-Email headers, with
// user_id / user_email query parameters as a fallback for contexts that
// cannot set custom headers (inline media elements). No session state is
// created or consulted; every request re-verifies against the database.
func Identity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		idValue := c.GetHeader(HeaderUserID)
		email := c.GetHeader(HeaderUserEmail)

		if idValue == "" || email == "" {
			idValue = c.Query("user_id")
			email = c.Query("user_email")
		}

		userID, ok := VerifyIdentity(db, idValue, email)
		if !ok {
			api.Error(c, http.StatusUnauthorized, "Authentication required. Please log in.")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID returns the verified user ID from the gin context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}
