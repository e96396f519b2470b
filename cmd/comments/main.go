package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialnet/internal/api"
	"socialnet/internal/application/factories/infrastructure"
	"socialnet/internal/client"
	"socialnet/internal/config"
	"socialnet/internal/infrastructure/postgres"
	"socialnet/internal/producer"
	"socialnet/internal/service/comments"
)

const serviceName = "comments-service"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	commentRepo := postgres.NewCommentRepository(pgPool)
	txManager := postgres.NewTxManager(pgPool)

	var emitter *producer.Emitter
	if cfg.Outbox.Enabled {
		emitter = producer.NewWithOutbox(postgres.NewOutboxRepository(pgPool), serviceName)
	} else {
		emitter = producer.New(infraFactory.Kafka(), serviceName)
	}

	postsClient := client.NewPosts(cfg.Services.Posts)
	likesClient := client.NewLikes(cfg.Services.Likes)

	svc := comments.New(commentRepo, txManager, emitter, postsClient, likesClient)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: api.NewCommentsRouter(svc, redisClient),
	}

	go func() {
		logger.Info("server starting", "service", serviceName, "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}
