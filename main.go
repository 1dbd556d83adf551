package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"medical-gallery-portal/internal/config"
	"medical-gallery-portal/internal/dashboard"
	"medical-gallery-portal/internal/gallery"
	"medical-gallery-portal/internal/routes"
	"medical-gallery-portal/internal/session"
)

func main() {
	// Load environment variables; the portal runs fine without a .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Gallery API client: the single upstream for auth, records and stats
	api := gallery.NewClient(cfg.Gallery.BaseURL, time.Duration(cfg.Gallery.RequestTimeout)*time.Second)

	// Restore the persisted session before any route decision is made
	store := session.NewStore(cfg.Session.FilePath, cfg.Session.Secret, time.Duration(cfg.Session.TTLHours)*time.Hour)
	store.Initialize()
	if identity := store.Current(); identity != nil {
		log.Printf("Restored session for %s (%s)", identity.Email, identity.UserType)
	}

	// Controller registry follows the session store's identity changes
	registry := dashboard.NewRegistry(api, store)

	// Initialize Gin router
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes
	routes.SetupRoutes(router, api, store, registry, cfg)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	fmt.Printf("Portal running on port %s (gallery API at %s)\n", cfg.Port, cfg.Gallery.BaseURL)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
