package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backends the server can run against.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config collects everything the server reads from the environment.
type Config struct {
	Port string

	Store struct {
		Backend string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Auth struct {
		JWTSecret  string
		SessionTTL time.Duration
	}

	Log struct {
		Level string
	}
}

// Load reads the configuration from environment variables with
// sensible local-development defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Port = getEnv("PORT", "8080")

	cfg.Store.Backend = getEnv("STORE_BACKEND", StoreMemory)
	switch cfg.Store.Backend {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	if db, err := strconv.Atoi(getEnv("REDIS_DB", "0")); err == nil {
		cfg.Redis.DB = db
	}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnv("DB_PORT", "5432")
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnv("DB_NAME", "bantaybarangay")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	ttlHours := 24
	if v, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "24")); err == nil && v > 0 {
		ttlHours = v
	}
	cfg.Auth.SessionTTL = time.Duration(ttlHours) * time.Hour

	cfg.Log.Level = getEnv("LOG_LEVEL", "INFO")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
