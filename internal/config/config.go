package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv    string
	Port       string
	JWTSecret  string
	CORSOrigin string
	Database   DatabaseConfig
	Firmware   FirmwareConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string // "postgres" (default) or "sqlite"
	Host       string
	Port       string
	Username   string
	Password   string
	Database   string
	SQLitePath string
	Alter      bool
}

// FirmwareConfig holds firmware upload configuration
type FirmwareConfig struct {
	// KeepHistory keeps earlier uploads instead of replacing them, so updates
	// can be dispatched against any stored firmware name.
	KeepHistory bool
	MaxUploadMB int64
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "32"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer")
	}

	driver := getEnv("DB_DRIVER", "postgres")
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", driver)
	}

	return &Config{
		NodeEnv:    getEnv("NODE_ENV", "development"),
		Port:       getEnv("PORT", "7070"),
		JWTSecret:  jwtSecret,
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		Database: DatabaseConfig{
			Driver:     driver,
			Host:       getEnv("PG_HOST", "localhost"),
			Port:       getEnv("PG_PORT", "5432"),
			Username:   getEnv("PG_USERNAME", "postgres"),
			Password:   os.Getenv("PG_PASSWORD"),
			Database:   getEnv("PG_DATABASE", "fota"),
			SQLitePath: getEnv("SQLITE_PATH", "fota.db"),
			Alter:      getEnv("DB_ALTER", "false") == "true",
		},
		Firmware: FirmwareConfig{
			KeepHistory: getEnv("FIRMWARE_KEEP_HISTORY", "false") == "true",
			MaxUploadMB: maxUpload,
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
