package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"qrattend/internal/attendance"
	"qrattend/internal/auth"
	"qrattend/internal/config"
	"qrattend/internal/handler"
	"qrattend/internal/httpmiddleware"
	"qrattend/internal/logger"
	"qrattend/internal/qr"
	"qrattend/internal/queue"
	"qrattend/internal/store"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.Production())

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func runHTTP(cfg config.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info().Str("dialect", string(db.Dialect)).Msg("database ready")

	artifacts, err := qr.NewArtifactStore(cfg.ArtifactDir)
	if err != nil {
		return err
	}

	var redisClient *store.Redis
	if cfg.UsesRedis() {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
	}

	var jobs queue.Queue
	if cfg.QueueBackend == "redis" {
		jobs = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	} else {
		mem := queue.NewInMemory(256)
		jobs = mem
		// Nobody else can drain an in-process queue.
		go func() {
			if _, err := qr.RunRenderer(ctx, mem, artifacts); err != nil {
				log.Error().Err(err).Msg("in-process renderer stopped")
			}
		}()
	}

	var limiter httpmiddleware.Limiter = httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	if cfg.RateLimitBackend == "redis" {
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.RateLimitPerMin)
	}

	adminHash := cfg.AdminPasswordHash
	if adminHash == "" && cfg.AdminPassword != "" {
		if adminHash, err = auth.HashPassword(cfg.AdminPassword, 0); err != nil {
			return err
		}
	}
	if adminHash == "" {
		log.Warn().Msg("ADMIN_PASSWORD_HASH / ADMIN_PASSWORD not set, admin endpoints disabled")
	}

	checks := map[string]handler.HealthCheck{"db": db.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			if !redisClient.Healthy(ctx) {
				return errors.New("redis unreachable")
			}
			return nil
		}
	}

	svc := attendance.NewService(db, artifacts, attendance.WithQueue(jobs))
	h := handler.New(svc, handler.AdminAuth{
		PasswordHash: adminHash,
		Issuer:       cfg.JWTIssuer,
		SigningKey:   cfg.JWTSigningKey,
		TTL:          cfg.AdminTokenTTL,
	}, checks)

	r := handler.NewRouter(h, handler.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
		WebDir:      cfg.WebDir,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("artifacts", artifacts.Dir()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	// Give outstanding requests 10 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}
	log.Info().Msg("server exited")
	return nil
}
