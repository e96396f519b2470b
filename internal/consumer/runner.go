package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/event"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

var (
	eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_events_processed_total",
		Help: "The total number of successfully handled events",
	}, []string{"consumer", "type"})
	eventsDeadLettered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_events_dead_lettered_total",
		Help: "The total number of events routed to the dead-letter channel",
	}, []string{"consumer"})
	eventRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_event_retries_total",
		Help: "The total number of redelivery attempts after retryable failures",
	}, []string{"consumer"})
	handleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "consumer_handle_duration_seconds",
		Help:    "Time taken to handle one event",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"consumer"})
)

const (
	maxAttempts   = 3
	retryInterval = 3 * time.Second
)

// Fetcher is the consume side of the bus (satisfied by kafka.Consumer).
type Fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher publishes to the dead-letter channel.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Runner drives one (service, topic set) listener. Retryable handler failures
// are redelivered up to maxAttempts with a fixed backoff; everything else —
// including an envelope that fails to decode — goes straight to the
// dead-letter topic for manual inspection.
type Runner struct {
	name       string
	fetcher    Fetcher
	dispatcher *Dispatcher
	dlq        Publisher

	backoff time.Duration
}

func NewRunner(name string, fetcher Fetcher, dispatcher *Dispatcher, dlq Publisher) *Runner {
	return &Runner{
		name:       name,
		fetcher:    fetcher,
		dispatcher: dispatcher,
		dlq:        dlq,
		backoff:    retryInterval,
	}
}

func (r *Runner) Run(ctx context.Context) error {
	slog.Info("consumer started", "consumer", r.name)

	for {
		msg, err := r.fetcher.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("failed to fetch message", "consumer", r.name, "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		r.process(ctx, msg)
	}
}

func (r *Runner) process(ctx context.Context, msg kafka.Message) {
	started := time.Now()

	var env event.Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		slog.Error("failed to unmarshal event envelope", "consumer", r.name, "topic", msg.Topic, "error", err)
		r.deadLetter(ctx, msg)
		r.commit(ctx, msg)
		return
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := r.dispatcher.Dispatch(ctx, &env)
		if err == nil {
			eventsProcessed.WithLabelValues(r.name, env.Type).Inc()
			handleDuration.WithLabelValues(r.name).Observe(time.Since(started).Seconds())
			r.commit(ctx, msg)
			return
		}

		if !apperr.IsRetryable(err) {
			slog.Error("non-retryable handler failure", "consumer", r.name, "type", env.Type, "event_id", env.ID, "error", err)
			r.deadLetter(ctx, msg)
			r.commit(ctx, msg)
			return
		}

		slog.Warn("retryable handler failure", "consumer", r.name, "type", env.Type,
			"event_id", env.ID, "attempt", attempt, "max", maxAttempts, "error", err)
		if attempt < maxAttempts {
			eventRetries.WithLabelValues(r.name).Inc()
			time.Sleep(r.backoff)
		}
	}

	slog.Error("retries exhausted, dead-lettering", "consumer", r.name, "type", env.Type, "event_id", env.ID)
	r.deadLetter(ctx, msg)
	r.commit(ctx, msg)
}

func (r *Runner) deadLetter(ctx context.Context, msg kafka.Message) {
	eventsDeadLettered.WithLabelValues(r.name).Inc()
	if r.dlq == nil {
		return
	}
	if err := r.dlq.Publish(ctx, event.DeadLetterTopic(msg.Topic), msg.Key, msg.Value); err != nil {
		slog.Error("failed to publish to dead-letter topic", "consumer", r.name, "topic", msg.Topic, "error", err)
	}
}

func (r *Runner) commit(ctx context.Context, msg kafka.Message) {
	if err := r.fetcher.CommitMessages(ctx, msg); err != nil {
		slog.Error("failed to commit kafka message", "consumer", r.name, "error", err)
	}
}
