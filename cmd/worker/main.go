package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"qrattend/internal/config"
	"qrattend/internal/logger"
	"qrattend/internal/qr"
	"qrattend/internal/queue"
	"qrattend/internal/store"
)

// Worker consumes render jobs from redis and rewrites QR artifacts.
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.Production())

	if cfg.QueueBackend != "redis" {
		log.Fatal().Str("backend", cfg.QueueBackend).Msg("worker needs QUEUE_BACKEND=redis; the api renders in-process otherwise")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		log.Warn().Str("addr", cfg.RedisAddr).Msg("redis not reachable yet, consumer will keep retrying")
	}

	artifacts, err := qr.NewArtifactStore(cfg.ArtifactDir)
	if err != nil {
		log.Fatal().Err(err).Msg("artifact store")
	}

	log.Info().Str("queue", cfg.QueueKey).Str("artifacts", artifacts.Dir()).Msg("worker started, waiting for jobs")
	n, err := qr.RunRenderer(ctx, queue.NewRedisQueue(redisClient.Client, cfg.QueueKey), artifacts)
	if err != nil {
		log.Fatal().Err(err).Msg("queue consume init failed")
	}
	log.Info().Int("rendered", n).Msg("worker stopped")
}
