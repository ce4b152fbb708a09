package main

import (
	"log"
	"os"
	"strconv"

	"polycopy/config"
	"polycopy/handlers"
	"polycopy/middleware"
	"polycopy/secrets"
	"polycopy/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfg, err := config.Load(os.Getenv("POLYCOPY_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cipher, err := secrets.NewFernetCipher(config.EncryptionKey())
	if err != nil {
		log.Fatalf("ENCRYPTION_KEY is missing or invalid: %v", err)
	}

	store, err := storage.NewPostgres()
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	defer store.Close()

	// Set up router
	r := gin.Default()
	r.Use(middleware.BasicAuth())
	r.Use(middleware.ValidateQueryParams())

	h := handlers.NewHandler(store, cipher)

	// Routes
	r.GET("/api/health", h.Health)
	r.POST("/api/followers", h.CreateFollower)
	r.GET("/api/followers", h.ListFollowers)
	r.GET("/api/followers/:id", h.GetFollower)
	r.PUT("/api/followers/:id/credentials", h.SetFollowerCredentials)
	r.POST("/api/follows", h.CreateFollow)
	r.PUT("/api/follows/:id/active", h.SetFollowActive)
	r.GET("/api/traders", h.ListTraders)
	r.GET("/api/orders", h.ListCopyOrders)
	r.GET("/api/orders/:id", h.GetCopyOrder)
	r.GET("/api/stats", h.GetStats)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = strconv.Itoa(cfg.Server.Port)
	}

	log.Printf("Admin API starting on http://localhost:%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
