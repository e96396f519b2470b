// Package subscriptions implements the follow graph between users.
package subscriptions

import (
	"context"
	"fmt"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/event"
	"socialnet/internal/domain/subscription"
	"socialnet/internal/infrastructure/postgres"
	"socialnet/internal/producer"
)

type UserVerifier interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo    subscription.Repository
	tx      postgres.Transactor
	emitter producer.EventEmitter
	users   UserVerifier
}

func New(
	repo subscription.Repository,
	tx postgres.Transactor,
	emitter producer.EventEmitter,
	users UserVerifier,
) *Service {
	return &Service{
		repo:    repo,
		tx:      tx,
		emitter: emitter,
		users:   users,
	}
}

type CreateParams struct {
	SubscriberID int64 `json:"subscriberId"`
	TargetID     int64 `json:"targetId"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*subscription.Subscription, error) {
	if params.SubscriberID == 0 || params.TargetID == 0 {
		return nil, fmt.Errorf("subscriberId and targetId are required: %w", apperr.ErrValidationFailed)
	}
	if params.SubscriberID == params.TargetID {
		return nil, fmt.Errorf("cannot subscribe to yourself: %w", apperr.ErrValidationFailed)
	}

	for _, id := range []int64{params.SubscriberID, params.TargetID} {
		ok, err := s.users.Exists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("verify user %d: %w", id, err)
		}
		if !ok {
			return nil, fmt.Errorf("user %d does not exist: %w", id, apperr.ErrValidationFailed)
		}
	}

	sub := &subscription.Subscription{
		SubscriberID: params.SubscriberID,
		TargetID:     params.TargetID,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, sub); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, event.SubscriptionCreated{SubscriptionSnapshot: snapshot(sub)})
	})
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	s.emitter.EmitCommitted(ctx, event.SubscriptionCreated{SubscriptionSnapshot: snapshot(sub)})

	return sub, nil
}

func (s *Service) ListBySubscriber(ctx context.Context, subscriberID int64) ([]*subscription.Subscription, error) {
	return s.repo.ListBySubscriber(ctx, subscriberID)
}

func (s *Service) ListByTarget(ctx context.Context, targetID int64) ([]*subscription.Subscription, error) {
	return s.repo.ListByTarget(ctx, targetID)
}

func (s *Service) ListIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return s.repo.ListIDsByUser(ctx, userID)
}

// SubscriberIDs returns the users following targetID.
func (s *Service) SubscriberIDs(ctx context.Context, targetID int64) ([]int64, error) {
	subs, err := s.repo.ListByTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.SubscriberID)
	}
	return ids, nil
}

func (s *Service) CountByTarget(ctx context.Context, targetID int64) (int64, error) {
	return s.repo.CountByTarget(ctx, targetID)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	payload := event.SubscriptionDeleted{SubscriptionSnapshot: snapshot(sub)}
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, payload)
	})
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	s.emitter.EmitCommitted(ctx, payload)

	return nil
}

func snapshot(s *subscription.Subscription) event.SubscriptionSnapshot {
	return event.SubscriptionSnapshot{
		SubscriptionID: s.ID,
		SubscriberID:   s.SubscriberID,
		TargetID:       s.TargetID,
		CreatedAt:      s.CreatedAt,
	}
}
