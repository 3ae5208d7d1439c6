package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration for both the API server and
// the sync agent.
type Config struct {
	ServerPort string

	// Database settings. DatabaseType selects the dialect (sqlite,
	// postgres, mysql); sqlite uses DatabasePath, the others use
	// DatabaseURL.
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	// Audio artifact storage.
	UploadDir     string
	UploadMaxSize int64

	// Sync agent settings.
	RemoteBaseURL string
	CacheDir      string

	// Weekly digest email (disabled when SESFromEmail is empty).
	SESRegion       string
	SESFromEmail    string
	SESFromName     string
	DigestRecipient string
	DigestInterval  time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults, loading a .env file first when one exists.
func Load() *Config {
	// A missing .env is the normal case in production.
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./readalong.db"),
		DatabaseURL:     getEnv("DB_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		UploadMaxSize:   getEnvInt64("UPLOAD_MAX_SIZE", 10*1024*1024),
		RemoteBaseURL:   getEnv("REMOTE_BASE_URL", "http://localhost:8080"),
		CacheDir:        getEnv("CACHE_DIR", defaultCacheDir()),
		SESRegion:       getEnv("SES_REGION", "us-east-1"),
		SESFromEmail:    getEnv("SES_FROM_EMAIL", ""),
		SESFromName:     getEnv("SES_FROM_NAME", "ReadAlong"),
		DigestRecipient: getEnv("DIGEST_RECIPIENT", ""),
		DigestInterval:  getEnvDuration("DIGEST_INTERVAL", 7*24*time.Hour),
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.readalong"
	}
	return filepath.Join(home, ".readalong")
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
