package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Store.Backend != StoreMemory {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, StoreMemory)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q, want localhost:6379", cfg.Redis.Addr)
	}
	if cfg.Database.Name != "bantaybarangay" {
		t.Errorf("Database.Name = %q, want bantaybarangay", cfg.Database.Name)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want 24h", cfg.Auth.SessionTTL)
	}
	if cfg.Log.Level != "INFO" {
		t.Errorf("Log.Level = %q, want INFO", cfg.Log.Level)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() succeeded without JWT_SECRET")
	}
}

func TestLoadRejectsUnknownStoreBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORE_BACKEND", "dynamo")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted unknown STORE_BACKEND")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", StoreRedis)
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SESSION_TTL_HOURS", "6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.Store.Backend != StoreRedis {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, StoreRedis)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Errorf("Redis.Addr = %q, want redis:6380", cfg.Redis.Addr)
	}
	if cfg.Redis.DB != 2 {
		t.Errorf("Redis.DB = %d, want 2", cfg.Redis.DB)
	}
	if cfg.Auth.SessionTTL != 6*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want 6h", cfg.Auth.SessionTTL)
	}
}
