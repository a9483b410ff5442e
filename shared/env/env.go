package env

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads a .env file into the process environment if one exists.
// Missing files are not an error; production deployments set real
// environment variables.
func Load() {
	_ = godotenv.Load()
}

// GetString returns the environment variable or a default.
func GetString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetInt returns the environment variable parsed as int or a default.
func GetInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetInt64 returns the environment variable parsed as int64 or a default.
func GetInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetBool returns the environment variable parsed as bool or a default.
func GetBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetDuration returns the environment variable parsed as a duration or a default.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
