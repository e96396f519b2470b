package outbox

import (
	"context"
	"time"
)

// Event is a pending publish recorded in the same transaction as the mutation
// that caused it. ID doubles as the envelope id on the wire.
type Event struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	EventType    string    `json:"event_type"`
	PartitionKey int64     `json:"partition_key"`
	Payload      []byte    `json:"payload"`
	Status       string    `json:"status"`
	Producer     string    `json:"producer"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, event *Event) error
	FetchBatch(ctx context.Context, limit int) ([]*Event, error)
	MarkProcessed(ctx context.Context, ids []string) error
	MarkFailed(ctx context.Context, ids []string) error
}
