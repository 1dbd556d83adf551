package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all configuration for the portal
type Config struct {
	Port        string
	Origin      string
	Environment string
	Gallery     GalleryConfig
	Google      GoogleOAuthConfig
	Session     SessionConfig
}

// GalleryConfig holds the remote gallery API connection details
type GalleryConfig struct {
	BaseURL        string
	RequestTimeout int
}

// GoogleOAuthConfig holds Google OAuth configuration
type GoogleOAuthConfig struct {
	ClientID string
}

// SessionConfig holds the persisted session settings
type SessionConfig struct {
	FilePath string
	Secret   string
	TTLHours int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	requestTimeout, err := strconv.Atoi(getEnv("GALLERY_REQUEST_TIMEOUT_SECONDS", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid GALLERY_REQUEST_TIMEOUT_SECONDS: %w", err)
	}

	sessionTTL, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "168"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}

	galleryConfig := GalleryConfig{
		BaseURL:        getEnv("GALLERY_API_URL", "http://localhost:8080"),
		RequestTimeout: requestTimeout,
	}

	googleConfig := GoogleOAuthConfig{
		ClientID: getEnv("GOOGLE_CLIENT_ID", ""),
	}

	sessionConfig := SessionConfig{
		FilePath: getEnv("SESSION_FILE", defaultSessionFile()),
		Secret:   getEnv("SESSION_SECRET", "default_session_secret"),
		TTLHours: sessionTTL,
	}

	return &Config{
		Port:        getEnv("PORT", "3000"),
		Origin:      getEnv("ORIGIN", "http://localhost:4200"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Gallery:     galleryConfig,
		Google:      googleConfig,
		Session:     sessionConfig,
	}, nil
}

// defaultSessionFile places the session token under the user's config
// directory, falling back to the working directory when it is unknown.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".medical-gallery-session"
	}
	return filepath.Join(dir, "medical-gallery", "session")
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
