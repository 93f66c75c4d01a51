package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("QUEUE_BACKEND", "")
	t.Setenv("RATE_LIMIT_BACKEND", "")

	cfg := FromEnv()
	if cfg.DatabaseURL != "data/attendance.db" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
	if cfg.ArtifactDir == "" {
		t.Fatal("artifact dir must have a default")
	}
	if cfg.UsesRedis() {
		t.Fatal("default config should not need redis")
	}
	if cfg.AdminTokenTTL != 30*time.Minute {
		t.Fatalf("unexpected ttl %s", cfg.AdminTokenTTL)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	t.Setenv("ADMIN_TOKEN_TTL", "5m")
	t.Setenv("QUEUE_BACKEND", "redis")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg := FromEnv()
	if !cfg.Production() {
		t.Fatal("expected production")
	}
	if cfg.RateLimitPerMin != 30 {
		t.Fatalf("rate limit = %d", cfg.RateLimitPerMin)
	}
	if cfg.AdminTokenTTL != 5*time.Minute {
		t.Fatalf("ttl = %s", cfg.AdminTokenTTL)
	}
	if !cfg.UsesRedis() {
		t.Fatal("redis queue should need redis")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
}

func TestFromEnvInvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MIN", "lots")
	t.Setenv("ADMIN_TOKEN_TTL", "soon")

	cfg := FromEnv()
	if cfg.RateLimitPerMin != 120 {
		t.Fatalf("rate limit = %d", cfg.RateLimitPerMin)
	}
	if cfg.AdminTokenTTL != 30*time.Minute {
		t.Fatalf("ttl = %s", cfg.AdminTokenTTL)
	}
}
