package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/event"

	"github.com/segmentio/kafka-go"
)

type fetcherStub struct {
	committed []kafka.Message
}

func (f *fetcherStub) FetchMessage(ctx context.Context) (kafka.Message, error) {
	return kafka.Message{}, context.Canceled
}

func (f *fetcherStub) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

type publisherStub struct {
	topics []string
	values [][]byte
}

func (p *publisherStub) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.topics = append(p.topics, topic)
	p.values = append(p.values, value)
	return nil
}

func newTestRunner(d *Dispatcher) (*Runner, *fetcherStub, *publisherStub) {
	f := &fetcherStub{}
	dlq := &publisherStub{}
	r := NewRunner("test-service", f, d, dlq)
	r.backoff = 0
	return r, f, dlq
}

func message(t *testing.T, topic, eventType string) kafka.Message {
	t.Helper()
	env := event.Envelope{ID: "e1", Type: eventType, Producer: "test"}
	value, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	return kafka.Message{Topic: topic, Key: []byte("10"), Value: value}
}

func TestRunnerCommitsOnSuccess(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	d.Handle("PostCreated", func(ctx context.Context, env *event.Envelope) error {
		calls++
		return nil
	})
	r, f, dlq := newTestRunner(d)

	r.process(context.Background(), message(t, event.TopicPostCreated, "PostCreated"))

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if len(f.committed) != 1 {
		t.Fatalf("committed = %d, want 1", len(f.committed))
	}
	if len(dlq.topics) != 0 {
		t.Fatalf("dead-lettered a successful message")
	}
}

func TestRunnerRetriesThenDeadLetters(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	d.Handle("PostCreated", func(ctx context.Context, env *event.Envelope) error {
		calls++
		return apperr.Retryable(errors.New("db down"))
	})
	r, f, dlq := newTestRunner(d)

	r.process(context.Background(), message(t, event.TopicPostCreated, "PostCreated"))

	if calls != 3 {
		t.Fatalf("handler calls = %d, want 3 attempts", calls)
	}
	if len(dlq.topics) != 1 || dlq.topics[0] != "post.created.dlq" {
		t.Fatalf("dlq topics = %v, want [post.created.dlq]", dlq.topics)
	}
	// The offset advances even after exhaustion; the message lives on in the DLQ.
	if len(f.committed) != 1 {
		t.Fatalf("committed = %d, want 1", len(f.committed))
	}
}

func TestRunnerDeadLettersNonRetryableImmediately(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	d.Handle("PostCreated", func(ctx context.Context, env *event.Envelope) error {
		calls++
		return errors.New("malformed payload")
	})
	r, f, dlq := newTestRunner(d)

	r.process(context.Background(), message(t, event.TopicPostCreated, "PostCreated"))

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1 (no retries)", calls)
	}
	if len(dlq.topics) != 1 {
		t.Fatalf("dlq publishes = %d, want 1", len(dlq.topics))
	}
	if len(f.committed) != 1 {
		t.Fatalf("committed = %d, want 1", len(f.committed))
	}
}

func TestRunnerRetriesTransientDependencyErrors(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	d.Handle("PostCreated", func(ctx context.Context, env *event.Envelope) error {
		calls++
		if calls < 2 {
			return apperr.ErrTransientDependency
		}
		return nil
	})
	r, f, dlq := newTestRunner(d)

	r.process(context.Background(), message(t, event.TopicPostCreated, "PostCreated"))

	if calls != 2 {
		t.Fatalf("handler calls = %d, want 2 (one retry, then success)", calls)
	}
	if len(dlq.topics) != 0 {
		t.Fatalf("dead-lettered a message that eventually succeeded")
	}
	if len(f.committed) != 1 {
		t.Fatalf("committed = %d, want 1", len(f.committed))
	}
}

func TestRunnerDeadLettersUndecodableEnvelope(t *testing.T) {
	d := NewDispatcher()
	d.Handle("PostCreated", func(ctx context.Context, env *event.Envelope) error {
		t.Fatal("handler must not run for a broken envelope")
		return nil
	})
	r, f, dlq := newTestRunner(d)

	r.process(context.Background(), kafka.Message{Topic: event.TopicPostCreated, Value: []byte("{not json")})

	if len(dlq.topics) != 1 || dlq.topics[0] != "post.created.dlq" {
		t.Fatalf("dlq topics = %v, want [post.created.dlq]", dlq.topics)
	}
	if len(f.committed) != 1 {
		t.Fatalf("committed = %d, want 1", len(f.committed))
	}
}

func TestRunnerSkipsUnregisteredTypesWithoutDLQ(t *testing.T) {
	d := NewDispatcher()
	r, f, dlq := newTestRunner(d)

	r.process(context.Background(), message(t, event.TopicUserUpdated, "UserUpdated"))

	if len(dlq.topics) != 0 {
		t.Fatalf("unregistered type must be committed, not dead-lettered")
	}
	if len(f.committed) != 1 {
		t.Fatalf("committed = %d, want 1", len(f.committed))
	}
}
