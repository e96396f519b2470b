package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"socialnet/internal/domain/event"
	"socialnet/internal/domain/outbox"
)

type busStub struct {
	topic string
	key   []byte
	value []byte
	calls int
	err   error
}

func (b *busStub) Publish(ctx context.Context, topic string, key, value []byte) error {
	b.calls++
	b.topic = topic
	b.key = key
	b.value = value
	return b.err
}

type outboxStub struct {
	events []*outbox.Event
}

func (o *outboxStub) Create(ctx context.Context, e *outbox.Event) error {
	o.events = append(o.events, e)
	return nil
}

func (o *outboxStub) FetchBatch(ctx context.Context, limit int) ([]*outbox.Event, error) {
	return nil, nil
}
func (o *outboxStub) MarkProcessed(ctx context.Context, ids []string) error { return nil }
func (o *outboxStub) MarkFailed(ctx context.Context, ids []string) error    { return nil }

func payload() event.PostCreated {
	return event.PostCreated{PostSnapshot: event.PostSnapshot{PostID: 42, UserID: 7, Content: "hi"}}
}

func TestDirectEmitterPublishesEnvelope(t *testing.T) {
	bus := &busStub{}
	e := New(bus, "posts-service")

	if e.Transactional() {
		t.Fatal("direct emitter must not be transactional")
	}

	e.EmitCommitted(context.Background(), payload())

	if bus.calls != 1 {
		t.Fatalf("publish calls = %d, want 1", bus.calls)
	}
	if bus.topic != event.TopicPostCreated {
		t.Fatalf("topic = %q, want %q", bus.topic, event.TopicPostCreated)
	}
	if string(bus.key) != "42" {
		t.Fatalf("partition key = %q, want the post's id", bus.key)
	}

	var env event.Envelope
	if err := json.Unmarshal(bus.value, &env); err != nil {
		t.Fatalf("envelope not valid json: %v", err)
	}
	if env.ID == "" || env.Type != "PostCreated" || env.Producer != "posts-service" {
		t.Fatalf("envelope = %+v", env)
	}
	if env.OccurredAt.IsZero() {
		t.Fatal("occurredAt not set")
	}

	var snap event.PostSnapshot
	if err := json.Unmarshal(env.Payload, &snap); err != nil {
		t.Fatalf("payload not valid json: %v", err)
	}
	if snap.PostID != 42 || snap.UserID != 7 {
		t.Fatalf("payload = %+v", snap)
	}
}

func TestDirectEmitterPendingIsNoop(t *testing.T) {
	bus := &busStub{}
	e := New(bus, "posts-service")

	if err := e.EmitPending(context.Background(), payload()); err != nil {
		t.Fatalf("pending in direct mode: %v", err)
	}
	if bus.calls != 0 {
		t.Fatal("pending must not publish in direct mode")
	}
}

// Fire-and-forget by contract: a publish failure is logged and swallowed, the
// committed local write stands.
func TestDirectEmitterSwallowsPublishFailure(t *testing.T) {
	bus := &busStub{err: errors.New("broker down")}
	e := New(bus, "posts-service")

	e.EmitCommitted(context.Background(), payload())

	if bus.calls != 1 {
		t.Fatalf("publish calls = %d, want 1", bus.calls)
	}
}

func TestOutboxEmitterRecordsPending(t *testing.T) {
	repo := &outboxStub{}
	e := NewWithOutbox(repo, "posts-service")

	if !e.Transactional() {
		t.Fatal("outbox emitter must be transactional")
	}

	if err := e.EmitPending(context.Background(), payload()); err != nil {
		t.Fatalf("emit pending: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("outbox rows = %d, want 1", len(repo.events))
	}
	row := repo.events[0]
	if row.ID == "" || row.Topic != event.TopicPostCreated || row.EventType != "PostCreated" {
		t.Fatalf("outbox row = %+v", row)
	}
	if row.PartitionKey != 42 || row.Status != "new" || row.Producer != "posts-service" {
		t.Fatalf("outbox row = %+v", row)
	}
}

func TestOutboxEmitterCommittedIsNoop(t *testing.T) {
	repo := &outboxStub{}
	e := NewWithOutbox(repo, "posts-service")

	// Would panic on the nil bus if it tried to publish.
	e.EmitCommitted(context.Background(), payload())

	if len(repo.events) != 0 {
		t.Fatal("committed must not write outbox rows")
	}
}

func TestEnvelopeIDsAreUnique(t *testing.T) {
	bus := &busStub{}
	e := New(bus, "posts-service")

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		e.EmitCommitted(context.Background(), payload())
		var env event.Envelope
		if err := json.Unmarshal(bus.value, &env); err != nil {
			t.Fatal(err)
		}
		if seen[env.ID] {
			t.Fatalf("duplicate envelope id %s", env.ID)
		}
		seen[env.ID] = true
	}
}
