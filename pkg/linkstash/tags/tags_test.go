package tags

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/auth"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	hash, _ := auth.HashPassword("password#123")
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestBookmark(t *testing.T, db *gorm.DB, userID uint, title string) models.Bookmark {
	bm := models.Bookmark{
		UserID: userID,
		Title:  title,
		URL:    "https://example.com",
		Type:   models.BookmarkTypeLink,
	}
	if err := db.Create(&bm).Error; err != nil {
		t.Fatalf("Failed to create test bookmark: %v", err)
	}
	return bm
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)
	api := r.Group("/api", auth.Identity(db))
	handler.RegisterRoutes(api)
	return r
}

func TestGetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")

	first, err := GetOrCreate(db, user.ID, "golang")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	second, err := GetOrCreate(db, user.ID, "golang")
	if err != nil {
		t.Fatalf("GetOrCreate failed on reuse: %v", err)
	}
	if first != second {
		t.Errorf("Expected same tag id on reuse, got %d and %d", first, second)
	}

	var count int64
	db.Model(&models.Tag{}).Where("user_id = ? AND name = ?", user.ID, "golang").Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 tag row, got %d", count)
	}
}

func TestGetOrCreateIsUserScoped(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	aliceTag, _ := GetOrCreate(db, alice.ID, "shared-name")
	bobTag, _ := GetOrCreate(db, bob.ID, "shared-name")

	if aliceTag == bobTag {
		t.Error("Expected distinct tags for distinct users with the same name")
	}
}

func TestAssociateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	bm := createTestBookmark(t, db, user.ID, "A bookmark")
	tagID, _ := GetOrCreate(db, user.ID, "golang")

	if err := Associate(db, bm.ID, tagID); err != nil {
		t.Fatalf("Associate failed: %v", err)
	}
	if err := Associate(db, bm.ID, tagID); err != nil {
		t.Fatalf("Associate failed on repeat: %v", err)
	}

	var count int64
	db.Model(&models.BookmarkTag{}).Where("bookmark_id = ? AND tag_id = ?", bm.ID, tagID).Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly 1 association, got %d", count)
	}
}

func TestApplySkipsEmptyNames(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	bm := createTestBookmark(t, db, user.ID, "A bookmark")

	if err := Apply(db, user.ID, bm.ID, []string{" golang ", "", "   ", "web"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	names, err := NamesByBookmark(db, []uint{bm.ID})
	if err != nil {
		t.Fatalf("NamesByBookmark failed: %v", err)
	}
	got := names[bm.ID]
	if len(got) != 2 {
		t.Fatalf("Expected 2 tags, got %v", got)
	}
	// Trimmed, sorted by name
	if got[0] != "golang" || got[1] != "web" {
		t.Errorf("Expected [golang web], got %v", got)
	}

	var count int64
	db.Model(&models.Tag{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 2 {
		t.Errorf("Expected no empty tag rows, got %d tags", count)
	}
}

func TestReplaceAll(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	bm := createTestBookmark(t, db, user.ID, "A bookmark")

	Apply(db, user.ID, bm.ID, []string{"old-one", "old-two"})
	if err := ReplaceAll(db, user.ID, bm.ID, []string{"new-one"}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	names, _ := NamesByBookmark(db, []uint{bm.ID})
	got := names[bm.ID]
	if len(got) != 1 || got[0] != "new-one" {
		t.Errorf("Expected [new-one], got %v", got)
	}

	// Orphaned tags persist; only the associations are dropped
	var tagCount int64
	db.Model(&models.Tag{}).Where("user_id = ?", user.ID).Count(&tagCount)
	if tagCount != 3 {
		t.Errorf("Expected orphan tags to survive, got %d tag rows", tagCount)
	}
}

func TestListTagsWithCounts(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")
	router := setupTestRouter(db)

	bm1 := createTestBookmark(t, db, user.ID, "First")
	bm2 := createTestBookmark(t, db, user.ID, "Second")
	Apply(db, user.ID, bm1.ID, []string{"golang", "web"})
	Apply(db, user.ID, bm2.ID, []string{"golang"})

	// Another user's tags must not leak in
	otherBm := createTestBookmark(t, db, other.ID, "Foreign")
	Apply(db, other.ID, otherBm.ID, []string{"secret"})

	req, _ := http.NewRequest("GET", "/api/tags", nil)
	req.Header.Set(auth.HeaderUserID, fmt.Sprintf("%d", user.ID))
	req.Header.Set(auth.HeaderUserEmail, user.Email)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data []TagResponse `json:"data"`
	}
	json.Unmarshal(resp.Body.Bytes(), &envelope)

	if len(envelope.Data) != 2 {
		t.Fatalf("Expected 2 tags, got %d", len(envelope.Data))
	}
	counts := map[string]int{}
	for _, tag := range envelope.Data {
		counts[tag.Name] = tag.BookmarkCount
	}
	if counts["golang"] != 2 || counts["web"] != 1 {
		t.Errorf("Expected golang=2 web=1, got %v", counts)
	}
}
