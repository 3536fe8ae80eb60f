package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"tenderdesk/api/internal/cache"
	"tenderdesk/api/internal/config"
	"tenderdesk/api/internal/database"
	"tenderdesk/api/internal/handlers"
	"tenderdesk/api/internal/jobs"
	"tenderdesk/api/internal/log"
	"tenderdesk/api/internal/mail"
	"tenderdesk/api/internal/repository"
	"tenderdesk/api/internal/server"
	"tenderdesk/api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Environment)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
}

func run(cfg *config.AppConfig, logger zerolog.Logger) error {
	ctx := context.Background()

	if err := database.Migrate(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer dbPool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}
	// A missing bucket only breaks uploads, so log and keep going.
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	mailer, err := mail.New(cfg.SMTP, cfg.ClientURL)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, objectStore, mailer, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(repository.NewUserRepository(dbPool), logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}
	defer scheduler.Stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Start()
	}()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-signalCtx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server exited cleanly")
	return nil
}
