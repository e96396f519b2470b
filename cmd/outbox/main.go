package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"socialnet/internal/application/factories/infrastructure"
	"socialnet/internal/config"
	"socialnet/internal/infrastructure/postgres"
	"socialnet/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

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

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("outbox metrics listening", "port", cfg.Metrics.Port)
		http.ListenAndServe(":"+cfg.Metrics.Port, mux)
	}()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	outboxRepo := postgres.NewOutboxRepository(pgPool)

	poller := worker.NewOutboxPoller(outboxRepo, infraFactory.Kafka(), cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)

	if err := poller.Run(ctx); err != nil {
		logger.Error("outbox poller stopped with error", "error", err)
	}

	logger.Info("outbox poller exited")
}
