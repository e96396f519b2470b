package postgres

import (
	"context"
	"errors"
	"fmt"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/subscription"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	const sql = `
		INSERT INTO subscriptions (subscriber_id, target_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := pick(ctx, r.pool).QueryRow(ctx, sql,
		s.SubscriberID, s.TargetID, s.CreatedAt).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	const sql = `
		SELECT id, subscriber_id, target_id, created_at
		FROM subscriptions
		WHERE id = $1
	`

	var s subscription.Subscription
	err := pick(ctx, r.pool).QueryRow(ctx, sql, id).Scan(
		&s.ID, &s.SubscriberID, &s.TargetID, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("subscription %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription by id: %w", err)
	}

	return &s, nil
}

func (r *SubscriptionRepository) ListBySubscriber(ctx context.Context, subscriberID int64) ([]*subscription.Subscription, error) {
	return r.list(ctx, `SELECT id, subscriber_id, target_id, created_at FROM subscriptions WHERE subscriber_id = $1 ORDER BY created_at ASC`, subscriberID)
}

func (r *SubscriptionRepository) ListByTarget(ctx context.Context, targetID int64) ([]*subscription.Subscription, error) {
	return r.list(ctx, `SELECT id, subscriber_id, target_id, created_at FROM subscriptions WHERE target_id = $1 ORDER BY created_at ASC`, targetID)
}

// ListIDsByUser returns subscriptions the user is on either side of; both sides
// go away when the user is deleted.
func (r *SubscriptionRepository) ListIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return listIDs(ctx, pick(ctx, r.pool),
		`SELECT id FROM subscriptions WHERE subscriber_id = $1 OR target_id = $1 ORDER BY id`, userID)
}

func (r *SubscriptionRepository) CountByTarget(ctx context.Context, targetID int64) (int64, error) {
	var n int64
	err := pick(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE target_id = $1`, targetID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count subscriptions by target: %w", err)
	}
	return n, nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := pick(ctx, r.pool).Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subscription %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}

func (r *SubscriptionRepository) list(ctx context.Context, sql string, arg any) ([]*subscription.Subscription, error) {
	rows, err := pick(ctx, r.pool).Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		s := &subscription.Subscription{}
		if err := rows.Scan(&s.ID, &s.SubscriberID, &s.TargetID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}

	return subs, rows.Err()
}
