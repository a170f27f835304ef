package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the success payload shape shared by every endpoint:
// {"success": true, "message": ..., "data": ...}. Failures are a bare
// {"error": ...} object; clients treat the presence of "error" as
// authoritative regardless of status code.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes the standard success envelope.
func Success(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes the standard error envelope.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// ServerError logs the underlying error and answers with a generic 500
// envelope. Storage errors are never leaked to callers.
func ServerError(c *gin.Context, message string, err error) {
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	Error(c, http.StatusInternalServerError, message)
}
