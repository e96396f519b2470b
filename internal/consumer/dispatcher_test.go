package consumer

import (
	"context"
	"errors"
	"testing"

	"socialnet/internal/domain/event"
)

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewDispatcher()

	var got string
	d.Handle("PostCreated", func(ctx context.Context, env *event.Envelope) error {
		got = env.ID
		return nil
	})

	err := d.Dispatch(context.Background(), &event.Envelope{ID: "e1", Type: "PostCreated"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got != "e1" {
		t.Fatalf("handler not invoked, got %q", got)
	}
}

func TestDispatcherSkipsUnknownType(t *testing.T) {
	d := NewDispatcher()
	d.Handle("PostCreated", func(ctx context.Context, env *event.Envelope) error {
		t.Fatal("handler for another type must not run")
		return nil
	})

	if err := d.Dispatch(context.Background(), &event.Envelope{Type: "UserCreated"}); err != nil {
		t.Fatalf("unknown type must be skipped silently, got %v", err)
	}
}

func TestDispatcherPropagatesHandlerError(t *testing.T) {
	d := NewDispatcher()
	want := errors.New("boom")
	d.Handle("PostDeleted", func(ctx context.Context, env *event.Envelope) error {
		return want
	})

	if err := d.Dispatch(context.Background(), &event.Envelope{Type: "PostDeleted"}); !errors.Is(err, want) {
		t.Fatalf("want handler error, got %v", err)
	}
}

func TestDispatcherPanicsOnDuplicateRegistration(t *testing.T) {
	d := NewDispatcher()
	h := func(ctx context.Context, env *event.Envelope) error { return nil }
	d.Handle("PostCreated", h)

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration must panic")
		}
	}()
	d.Handle("PostCreated", h)
}
