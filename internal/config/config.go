package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env               string
	HTTPPort          string
	DatabaseURL       string
	ArtifactDir       string
	RedisAddr         string
	QueueBackend      string
	QueueKey          string
	RateLimitBackend  string
	RateLimitPerMin   int
	JWTIssuer         string
	JWTSigningKey     string
	AdminTokenTTL     time.Duration
	AdminPasswordHash string
	AdminPassword     string
	CORSOrigins       []string
	LogLevel          string
	WebDir            string
}

// Production reports whether the app runs with production settings.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

// UsesRedis reports whether any configured backend needs a redis client.
func (a App) UsesRedis() bool {
	return a.QueueBackend == "redis" || a.RateLimitBackend == "redis"
}

// Load returns application config populated from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() App {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env file")
	}
	return FromEnv()
}

// FromEnv builds the config from the current environment only.
func FromEnv() App {
	return App{
		Env:               getEnv("APP_ENV", "dev"),
		HTTPPort:          getEnv("HTTP_PORT", "5000"),
		DatabaseURL:       getEnv("DATABASE_URL", "data/attendance.db"),
		ArtifactDir:       getEnv("ARTIFACT_DIR", "qr_codes"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		QueueBackend:      getEnv("QUEUE_BACKEND", "memory"),
		QueueKey:          getEnv("QUEUE_KEY", "qrattend:render"),
		RateLimitBackend:  getEnv("RATE_LIMIT_BACKEND", "memory"),
		RateLimitPerMin:   intEnv("RATE_LIMIT_PER_MIN", 120),
		JWTIssuer:         getEnv("JWT_ISSUER", "qrattend"),
		JWTSigningKey:     getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		AdminTokenTTL:     durationEnv("ADMIN_TOKEN_TTL", 30*time.Minute),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		CORSOrigins:       listEnv("CORS_ORIGINS", []string{"*"}),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		WebDir:            getEnv("WEB_DIR", ""),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Dur("fallback", fallback).Msg("invalid duration, using fallback")
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Warn().Str("key", key).Int("fallback", fallback).Msg("invalid int, using fallback")
	}
	return fallback
}

func listEnv(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
