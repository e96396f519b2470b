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
	"socialnet/internal/config"
	"socialnet/internal/consumer"
	"socialnet/internal/domain/event"
	"socialnet/internal/infrastructure/kafka"
	"socialnet/internal/infrastructure/postgres"
	"socialnet/internal/service/stats"
)

const serviceName = "stats-service"

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

	cache, err := infraFactory.Cache(ctx)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	statsRepo := postgres.NewStatsRepository(pgPool)
	inboxRepo := postgres.NewInboxRepository(pgPool)
	txManager := postgres.NewTxManager(pgPool)

	svc := stats.New(statsRepo, inboxRepo, txManager, cache)

	// Statistics follows every lifecycle topic.
	dispatcher := consumer.NewDispatcher()
	svc.RegisterHandlers(dispatcher)

	kafkaConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, event.AllTopics(), serviceName)
	defer kafkaConsumer.Close()

	runner := consumer.NewRunner(serviceName, kafkaConsumer, dispatcher, infraFactory.Kafka())
	go func() {
		if err := runner.Run(ctx); err != nil {
			logger.Error("consumer stopped with error", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: api.NewStatsRouter(svc),
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
