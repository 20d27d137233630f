// Package config loads application configuration from environment variables,
// with support for required variables, default values, and collective error
// reporting: all problems are gathered and returned as a single error so a
// misconfigured deployment fails fast with the full picture.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PoolConfig holds settings for the database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret     string        // secret key for signing JWTs
	TokenDuration time.Duration // lifetime of issued access tokens
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// S3Config holds settings for the S3 blob store backend.
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string // optional override for S3-compatible services
	AccessKey string
	SecretKey string
}

// StorageConfig selects and configures the photo blob store backend.
type StorageConfig struct {
	Backend   string // "filesystem", "memory" or "s3"
	UploadDir string // filesystem backend root
	S3        S3Config
}

// AppConfig is the top-level configuration structure.
type AppConfig struct {
	DB      *PoolConfig
	Auth    *AuthConfig
	Server  *ServerConfig
	Storage *StorageConfig
}

// getRequiredEnv reads a required variable, collecting an error if unset.
func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// getOptionalEnv reads an optional variable with a default.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getOptionalEnvInt reads an optional integer variable, collecting an error
// when the value does not parse.
func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvDuration reads an optional duration variable ("15m", "24h").
func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// LoadConfig reads and validates all configuration from the environment.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	// Database.
	db := &PoolConfig{
		Host:     getOptionalEnv("DB_HOST", "localhost"),
		Port:     getOptionalEnvInt("DB_PORT", 5432, &errs),
		User:     getRequiredEnv("DB_USER", &errs),
		Password: getRequiredEnv("DB_PASSWORD", &errs),
		DBName:   getRequiredEnv("DB_NAME", &errs),
		MaxSize:  getOptionalEnvInt("DB_POOL_SIZE", 10, &errs),
	}
	if db.MaxSize < 1 || db.MaxSize > 100 {
		errs = append(errs, fmt.Sprintf("DB_POOL_SIZE must be between 1 and 100, got %d", db.MaxSize))
	}

	// Auth.
	auth := &AuthConfig{
		JWTSecret:     getRequiredEnv("JWT_SECRET", &errs),
		TokenDuration: getOptionalEnvDuration("JWT_TOKEN_DURATION", 24*time.Hour, &errs),
	}

	// Server.
	server := &ServerConfig{
		Port: getOptionalEnv("PORT", "5000"),
	}

	// Storage.
	storage := &StorageConfig{
		Backend:   getOptionalEnv("STORAGE_BACKEND", "filesystem"),
		UploadDir: getOptionalEnv("UPLOAD_DIR", "uploads"),
		S3: S3Config{
			Bucket:    getOptionalEnv("STORAGE_S3_BUCKET", ""),
			Prefix:    getOptionalEnv("STORAGE_S3_PREFIX", "photos"),
			Region:    getOptionalEnv("STORAGE_S3_REGION", "us-east-1"),
			Endpoint:  getOptionalEnv("STORAGE_S3_ENDPOINT", ""),
			AccessKey: getOptionalEnv("STORAGE_S3_ACCESS_KEY", ""),
			SecretKey: getOptionalEnv("STORAGE_S3_SECRET_KEY", ""),
		},
	}
	switch storage.Backend {
	case "filesystem", "memory", "s3":
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_BACKEND must be filesystem, memory or s3, got '%s'", storage.Backend))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB:      db,
		Auth:    auth,
		Server:  server,
		Storage: storage,
	}, nil
}
