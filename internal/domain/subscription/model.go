package subscription

import (
	"context"
	"time"
)

// Subscription: SubscriberID follows TargetID.
type Subscription struct {
	ID           int64     `json:"id"`
	SubscriberID int64     `json:"subscriberId"`
	TargetID     int64     `json:"targetId"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	GetByID(ctx context.Context, id int64) (*Subscription, error)
	ListBySubscriber(ctx context.Context, subscriberID int64) ([]*Subscription, error)
	ListByTarget(ctx context.Context, targetID int64) ([]*Subscription, error)
	ListIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	CountByTarget(ctx context.Context, targetID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}
