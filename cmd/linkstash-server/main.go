package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/api"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/auth"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/bookmarks"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/canvas"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/collections"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/database"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/media"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/models"
	"github.com/linkstashapp/linkstash-server/pkg/linkstash/tags"
)

func main() {
	// Load .env if present; real environment variables win
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	dbPath := os.Getenv("LINKSTASH_DB_PATH")
	if dbPath == "" {
		dbPath = "linkstash.db"
	}

	db, err := database.Connect(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	mediaDir := os.Getenv("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "uploads/media"
	}

	// Set up Gin router
	r := gin.Default()
	r.Use(cors.New(api.CORSConfig()))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Identity middleware: stateless, re-verifies headers on every request
	identity := auth.Identity(db)

	// API routes
	apiGroup := r.Group("/api")
	{
		// Auth routes (signup/login public, check/me header-verified)
		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(apiGroup.Group("/auth"))

		// Bookmark routes
		bookmarksHandler := bookmarks.NewHandler(db)
		bookmarksHandler.RegisterRoutes(apiGroup.Group("", identity))

		// Collection routes
		collectionsHandler := collections.NewHandler(db)
		collectionsHandler.RegisterRoutes(apiGroup.Group("", identity))

		// Canvas routes
		canvasHandler := canvas.NewHandler(db)
		canvasHandler.RegisterRoutes(apiGroup.Group("", identity))

		// Tag routes
		tagsHandler := tags.NewHandler(db)
		tagsHandler.RegisterRoutes(apiGroup.Group("", identity))
	}

	// Media: upload under /api, retrieval at /media with the query-param
	// identity fallback for inline <audio>/<video> elements
	mediaHandler := media.NewHandler(db, mediaDir)
	mediaHandler.RegisterRoutes(apiGroup.Group("", identity))
	mediaHandler.RegisterServeRoutes(r.Group("", identity))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting linkstash server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
