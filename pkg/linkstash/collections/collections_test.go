package collections

import (
	"bytes"
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

func createTestCollection(t *testing.T, db *gorm.DB, userID uint, name string, parentID *uint) models.Collection {
	col := models.Collection{UserID: userID, Name: name, ParentID: parentID}
	if err := db.Create(&col).Error; err != nil {
		t.Fatalf("Failed to create test collection: %v", err)
	}
	return col
}

func createTestBookmark(t *testing.T, db *gorm.DB, userID uint, collectionID *uint, title string) models.Bookmark {
	bm := models.Bookmark{
		UserID:       userID,
		CollectionID: collectionID,
		Title:        title,
		Type:         models.BookmarkTypeLink,
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

func identify(req *http.Request, user models.User) {
	req.Header.Set(auth.HeaderUserID, fmt.Sprintf("%d", user.ID))
	req.Header.Set(auth.HeaderUserEmail, user.Email)
}

func listCollections(t *testing.T, router *gin.Engine, user models.User) []*CollectionResponse {
	req, _ := http.NewRequest("GET", "/api/collections", nil)
	identify(req, user)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data []*CollectionResponse `json:"data"`
	}
	json.Unmarshal(resp.Body.Bytes(), &envelope)
	return envelope.Data
}

func TestListBuildsTreeWithCounts(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")

	parent := createTestCollection(t, db, user.ID, "Work", nil)
	child := createTestCollection(t, db, user.ID, "Projects", &parent.ID)

	createTestBookmark(t, db, user.ID, &parent.ID, "In parent")
	createTestBookmark(t, db, user.ID, &child.ID, "In child one")
	createTestBookmark(t, db, user.ID, &child.ID, "In child two")
	createTestBookmark(t, db, user.ID, nil, "Uncategorized")

	tree := listCollections(t, router, user)

	if len(tree) != 1 {
		t.Fatalf("Expected 1 root, got %d", len(tree))
	}
	root := tree[0]
	if root.Name != "Work" || root.BookmarkCount != 1 {
		t.Errorf("Expected root Work with count 1, got %s count %d", root.Name, root.BookmarkCount)
	}
	if len(root.Children) != 1 {
		t.Fatalf("Expected 1 child under Work, got %d", len(root.Children))
	}
	if root.Children[0].Name != "Projects" || root.Children[0].BookmarkCount != 2 {
		t.Errorf("Expected child Projects with count 2, got %s count %d",
			root.Children[0].Name, root.Children[0].BookmarkCount)
	}
}

func TestListReparentsOrphansAsRoots(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")

	missing := uint(9999)
	createTestCollection(t, db, user.ID, "Orphan", &missing)

	tree := listCollections(t, router, user)
	if len(tree) != 1 || tree[0].Name != "Orphan" {
		t.Fatalf("Expected orphan surfaced as root, got %+v", tree)
	}
}

func TestListIsOwnerScoped(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	createTestCollection(t, db, alice.ID, "Mine", nil)
	createTestCollection(t, db, bob.ID, "Theirs", nil)

	tree := listCollections(t, router, alice)
	if len(tree) != 1 || tree[0].Name != "Mine" {
		t.Errorf("Expected only alice's collection, got %+v", tree)
	}
}

func TestCreateCollection(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")

	body, _ := json.Marshal(CreateCollectionRequest{Name: "  Reading  "})
	req, _ := http.NewRequest("POST", "/api/collections", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	identify(req, user)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data CollectionResponse `json:"data"`
	}
	json.Unmarshal(resp.Body.Bytes(), &envelope)
	if envelope.Data.Name != "Reading" {
		t.Errorf("Expected trimmed name Reading, got %q", envelope.Data.Name)
	}
	if envelope.Data.BookmarkCount != 0 {
		t.Errorf("Expected new collection with 0 bookmarks, got %d", envelope.Data.BookmarkCount)
	}
}

func TestCreateCollectionRequiresName(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")

	body, _ := json.Marshal(CreateCollectionRequest{Name: "   "})
	req, _ := http.NewRequest("POST", "/api/collections", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	identify(req, user)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestCreateCollectionRejectsForeignParent(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	bobCol := createTestCollection(t, db, bob.ID, "Bob's", nil)

	body, _ := json.Marshal(CreateCollectionRequest{Name: "Sneaky", ParentID: &bobCol.ID})
	req, _ := http.NewRequest("POST", "/api/collections", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	identify(req, alice)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
	var errBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &errBody)
	if errBody["error"] != "Invalid parent collection" {
		t.Errorf("Expected invalid parent error, got %q", errBody["error"])
	}
}

func TestUpdateCollection(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")
	col := createTestCollection(t, db, user.ID, "Old", nil)

	newName := "New"
	body, _ := json.Marshal(UpdateCollectionRequest{Name: &newName})
	req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/collections/%d", col.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	identify(req, user)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated models.Collection
	db.First(&updated, col.ID)
	if updated.Name != "New" {
		t.Errorf("Expected name New, got %q", updated.Name)
	}
}

func TestUpdateCollectionNotOwned(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	bobCol := createTestCollection(t, db, bob.ID, "Bob's", nil)

	newName := "Hijacked"
	body, _ := json.Marshal(UpdateCollectionRequest{Name: &newName})
	req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/collections/%d", bobCol.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	identify(req, alice)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestUpdateCollectionNoFields(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")
	col := createTestCollection(t, db, user.ID, "Stuff", nil)

	req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/collections/%d", col.ID), bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	identify(req, user)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
	var errBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &errBody)
	if errBody["error"] != "No fields to update" {
		t.Errorf("Expected no-fields error, got %q", errBody["error"])
	}
}

func TestUpdateCollectionClearParent(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")
	parent := createTestCollection(t, db, user.ID, "Parent", nil)
	child := createTestCollection(t, db, user.ID, "Child", &parent.ID)

	zero := uint(0)
	body, _ := json.Marshal(UpdateCollectionRequest{ParentID: &zero})
	req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/collections/%d", child.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	identify(req, user)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var updated models.Collection
	db.First(&updated, child.ID)
	if updated.ParentID != nil {
		t.Errorf("Expected parent cleared, got %v", *updated.ParentID)
	}
}

func TestDeleteCollectionLeavesBookmarks(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")
	col := createTestCollection(t, db, user.ID, "Doomed", nil)
	bm := createTestBookmark(t, db, user.ID, &col.ID, "Survivor")

	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/collections/%d", col.ID), nil)
	identify(req, user)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	// The bookmark survives with its dangling collection_id intact
	var survivor models.Bookmark
	if err := db.First(&survivor, bm.ID).Error; err != nil {
		t.Fatalf("Expected bookmark to survive collection deletion: %v", err)
	}
	if survivor.CollectionID == nil || *survivor.CollectionID != col.ID {
		t.Error("Expected dangling collection_id to be preserved")
	}
}

func TestDeleteCollectionNotOwned(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	bobCol := createTestCollection(t, db, bob.ID, "Bob's", nil)

	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/collections/%d", bobCol.ID), nil)
	identify(req, alice)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}

	var still models.Collection
	if err := db.First(&still, bobCol.ID).Error; err != nil {
		t.Error("Expected bob's collection to be intact")
	}
}
