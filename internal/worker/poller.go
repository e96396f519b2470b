// Package worker relays outbox rows to Kafka. It only runs when outbox mode
// is enabled; in direct mode services publish themselves after commit.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"socialnet/internal/domain/event"
	"socialnet/internal/domain/outbox"
	"socialnet/internal/producer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_outbox_events_published_total",
		Help: "The total number of events published to Kafka",
	})
	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_outbox_publish_errors_total",
		Help: "The total number of failed publish attempts",
	})
)

type OutboxPoller struct {
	outboxRepo outbox.Repository
	bus        producer.Bus

	interval  time.Duration
	batchSize int
}

func NewOutboxPoller(outboxRepo outbox.Repository, bus producer.Bus, interval time.Duration, batchSize int) *OutboxPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &OutboxPoller{
		outboxRepo: outboxRepo,
		bus:        bus,
		interval:   interval,
		batchSize:  batchSize,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				slog.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

func (p *OutboxPoller) processBatch(ctx context.Context) error {
	events, err := p.outboxRepo.FetchBatch(ctx, p.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	var processedIDs []string
	var failedIDs []string

	for _, e := range events {
		env := event.Envelope{
			ID:         e.ID,
			Type:       e.EventType,
			Producer:   e.Producer,
			OccurredAt: e.CreatedAt,
			Payload:    e.Payload,
		}

		value, err := json.Marshal(env)
		if err != nil {
			slog.Error("failed to marshal envelope", "event_id", e.ID, "error", err)
			publishErrors.Inc()
			failedIDs = append(failedIDs, e.ID)
			continue
		}

		key := []byte(strconv.FormatInt(e.PartitionKey, 10))

		sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = p.bus.Publish(sendCtx, e.Topic, key, value)
		cancel()

		if err != nil {
			slog.Error("failed to publish outbox event", "event_id", e.ID, "topic", e.Topic, "error", err)
			publishErrors.Inc()
			failedIDs = append(failedIDs, e.ID)
			continue
		}

		eventsPublished.Inc()
		processedIDs = append(processedIDs, e.ID)
	}

	if len(processedIDs) > 0 {
		if err := p.outboxRepo.MarkProcessed(ctx, processedIDs); err != nil {
			return err
		}
		slog.Info("relayed outbox events", "count", len(processedIDs))
	}

	if len(failedIDs) > 0 {
		if err := p.outboxRepo.MarkFailed(ctx, failedIDs); err != nil {
			slog.Error("failed to mark events as failed", "error", err)
		}
	}

	return nil
}
