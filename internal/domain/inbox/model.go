package inbox

import (
	"context"
	"time"
)

// Event is a consumer-side record of a processed envelope id (Inbox pattern).
// It is what makes at-least-once delivery safe for non-idempotent handlers.
type Event struct {
	Consumer    string    `json:"consumer"`
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	ProcessedAt time.Time `json:"processed_at"`
}

type Repository interface {
	// SaveIfNotExists returns true if the event id was recorded (first
	// delivery), false if it was already processed. Must run inside the same
	// transaction as the handler's effects.
	SaveIfNotExists(ctx context.Context, consumer, eventID, eventType string) (bool, error)
}
