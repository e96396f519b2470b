// Package consumer is the receive side of the event bus: a dispatcher that
// routes each envelope to exactly one handler by payload type, and a runner
// that drives the fetch/retry/dead-letter/commit loop.
package consumer

import (
	"context"
	"fmt"

	"socialnet/internal/domain/event"
)

type HandlerFunc func(ctx context.Context, env *event.Envelope) error

// Dispatcher routes an envelope to the single handler registered for its type.
// Types nobody registered are skipped; a service only reacts to what it knows.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

func (d *Dispatcher) Handle(eventType string, h HandlerFunc) {
	if _, dup := d.handlers[eventType]; dup {
		panic(fmt.Sprintf("consumer: duplicate handler for %q", eventType))
	}
	d.handlers[eventType] = h
}

func (d *Dispatcher) Dispatch(ctx context.Context, env *event.Envelope) error {
	h, ok := d.handlers[env.Type]
	if !ok {
		return nil
	}
	return h(ctx, env)
}
