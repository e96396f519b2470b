// Package producer turns domain payloads into published events. Each service
// owns one Emitter; the partition key is always the id of the entity that
// changed, never of a related entity.
package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"socialnet/internal/domain/event"
	"socialnet/internal/domain/outbox"

	"github.com/google/uuid"
)

// Bus is the publish side of the event bus.
type Bus interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// EventEmitter is what services program against; Emitter is the production
// implementation.
type EventEmitter interface {
	EmitPending(ctx context.Context, p event.Payload) error
	EmitCommitted(ctx context.Context, p event.Payload)
}

type Emitter struct {
	bus        Bus
	outboxRepo outbox.Repository
	producer   string
}

// New builds a direct (fire-and-forget) emitter: events are published after
// the local commit, and a crash in between loses the event.
func New(bus Bus, producerName string) *Emitter {
	return &Emitter{bus: bus, producer: producerName}
}

// NewWithOutbox builds a transactional emitter: events are written to the
// outbox table inside the mutation's transaction and relayed by cmd/outbox.
func NewWithOutbox(repo outbox.Repository, producerName string) *Emitter {
	return &Emitter{outboxRepo: repo, producer: producerName}
}

// Transactional reports whether events go through the outbox.
func (e *Emitter) Transactional() bool { return e.outboxRepo != nil }

// EmitPending records p inside the current transaction when the emitter is
// transactional; otherwise it is a no-op and the caller publishes after commit
// via EmitCommitted. Call it from within the mutation's transaction.
func (e *Emitter) EmitPending(ctx context.Context, p event.Payload) error {
	if e.outboxRepo == nil {
		return nil
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", p.EventType(), err)
	}

	return e.outboxRepo.Create(ctx, &outbox.Event{
		ID:           uuid.New().String(),
		Topic:        p.Topic(),
		EventType:    p.EventType(),
		PartitionKey: p.Key(),
		Payload:      payload,
		Status:       "new",
		Producer:     e.producer,
		CreatedAt:    time.Now().UTC(),
	})
}

// EmitCommitted publishes p for a mutation that has already committed. In
// outbox mode the event was recorded by EmitPending and this is a no-op.
// Publish failures are logged, not returned: the local write already
// succeeded and there is no retry record (the documented gap of direct mode).
func (e *Emitter) EmitCommitted(ctx context.Context, p event.Payload) {
	if e.outboxRepo != nil {
		return
	}

	value, err := Encode(e.producer, p)
	if err != nil {
		slog.Error("encode event", "type", p.EventType(), "error", err)
		return
	}

	key := []byte(strconv.FormatInt(p.Key(), 10))
	if err := e.bus.Publish(ctx, p.Topic(), key, value); err != nil {
		slog.Error("publish event", "topic", p.Topic(), "type", p.EventType(), "error", err)
	}
}

// Encode wraps p in an envelope and marshals it for the wire.
func Encode(producerName string, p event.Payload) ([]byte, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", p.EventType(), err)
	}

	env := event.Envelope{
		ID:         uuid.New().String(),
		Type:       p.EventType(),
		Producer:   producerName,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	value, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	return value, nil
}
