package config

import (
	"os"
	"strconv"

	"psychofit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Fit      FitConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// DataConfig holds dataset input settings
type DataConfig struct {
	File string // two-column CSV or XLSX (stimulus, response)
}

// FitConfig holds fitting defaults
type FitConfig struct {
	Seed     int64
	Restarts int
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds optional result-store settings.
// An empty URL disables persistence.
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Data: DataConfig{
			File: getEnvOrDefault("DATA_FILE", ""),
		},
		Fit: FitConfig{
			Seed:     getEnvInt64OrDefault("SEED", 1),
			Restarts: getEnvIntOrDefault("RESTARTS", 10),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
	}

	if cfg.Fit.Restarts < 1 {
		return nil, errors.ConfigInvalid("RESTARTS must be >= 1")
	}

	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
