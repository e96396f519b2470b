package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type InboxRepository struct {
	pool *pgxpool.Pool
}

func NewInboxRepository(pool *pgxpool.Pool) *InboxRepository {
	return &InboxRepository{pool: pool}
}

// SaveIfNotExists returns true if the event was saved (first delivery), false
// if it already existed. Runs on the transaction in ctx when present, so the
// dedupe record commits or rolls back together with the handler's effects.
func (r *InboxRepository) SaveIfNotExists(ctx context.Context, consumer, eventID, eventType string) (bool, error) {
	const sql = `
		INSERT INTO inbox_events (consumer, event_id, event_type, processed_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (consumer, event_id) DO NOTHING
	`

	tag, err := pick(ctx, r.pool).Exec(ctx, sql, consumer, eventID, eventType)
	if err != nil {
		return false, fmt.Errorf("insert inbox event: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
