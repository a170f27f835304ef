package auth

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/api"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/models"
	"gorm.io/gorm"
)

var (
	emailRegex       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	specialCharRegex = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// Handler handles account requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new auth handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token,omitempty"`
}

// Signup creates a new account and its default "Unsorted" collection
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" || email == "" || req.Password == "" {
		api.Error(c, http.StatusBadRequest, "All fields are required")
		return
	}
	if len(username) < 3 || len(username) > 50 {
		api.Error(c, http.StatusBadRequest, "Username must be between 3 and 50 characters")
		return
	}
	if !emailRegex.MatchString(email) {
		api.Error(c, http.StatusBadRequest, "Invalid email format")
		return
	}
	if len(req.Password) < 8 {
		api.Error(c, http.StatusBadRequest, "Password must be at least 8 characters long")
		return
	}
	if !specialCharRegex.MatchString(req.Password) {
		api.Error(c, http.StatusBadRequest, "Password must contain at least one special character")
		return
	}
	if req.Password != req.ConfirmPassword {
		api.Error(c, http.StatusBadRequest, "Passwords do not match")
		return
	}

	var existing models.User
	if err := h.db.Where("username = ? OR email = ?", username, email).First(&existing).Error; err == nil {
		api.Error(c, http.StatusBadRequest, "Username or email already exists")
		return
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		api.ServerError(c, "Failed to create user", err)
		return
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	// Create the user and their starter collection together
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		unsorted := models.Collection{UserID: user.ID, Name: "Unsorted"}
		return tx.Create(&unsorted).Error
	})
	if err != nil {
		api.ServerError(c, "Failed to create user", err)
		return
	}

	api.Success(c, http.StatusOK, UserResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, "Account created successfully")
}

// Login verifies email+password and returns the user with a login token
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		api.Error(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		api.Error(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !CheckPassword(req.Password, user.PasswordHash) {
		api.Error(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := GenerateToken(user.ID, user.Email)
	if err != nil {
		api.ServerError(c, "Failed to generate token", err)
		return
	}

	api.Success(c, http.StatusOK, UserResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	}, "Login successful")
}

// Logout acknowledges logout. There is no server-side session to clear.
func (h *Handler) Logout(c *gin.Context) {
	api.Success(c, http.StatusOK, nil, "Logged out successfully")
}

// Check confirms the caller's header identity is valid
func (h *Handler) Check(c *gin.Context) {
	userID, _ := GetUserID(c)
	api.Success(c, http.StatusOK, gin.H{
		"authenticated": true,
		"user_id":       userID,
	}, "Header authentication valid")
}

// Me returns the authenticated user's record
func (h *Handler) Me(c *gin.Context) {
	userID, _ := GetUserID(c)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		api.Error(c, http.StatusNotFound, "User not found")
		return
	}

	api.Success(c, http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	}, "")
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.Signup)
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/check", Identity(h.db), h.Check)
	rg.GET("/me", Identity(h.db), h.Me)
}
