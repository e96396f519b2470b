package users

import (
	"context"
	"encoding/json"
	"fmt"

	"socialnet/internal/consumer"
	"socialnet/internal/domain/event"
)

// RegisterHandlers subscribes the users service to the events that invalidate
// a cached profile: its postsCount changes with post events, its
// followersCount with subscription events. Eviction is idempotent, so
// redelivery is harmless here.
func (s *Service) RegisterHandlers(d *consumer.Dispatcher) {
	d.Handle("PostCreated", s.onPostEvent)
	d.Handle("PostDeleted", s.onPostEvent)
	d.Handle("SubscriptionCreated", s.onSubscriptionEvent)
	d.Handle("SubscriptionDeleted", s.onSubscriptionEvent)
}

func (s *Service) onPostEvent(ctx context.Context, env *event.Envelope) error {
	var p event.PostSnapshot
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Type, err)
	}

	s.Evict(ctx, p.UserID)
	return nil
}

func (s *Service) onSubscriptionEvent(ctx context.Context, env *event.Envelope) error {
	var p event.SubscriptionSnapshot
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Type, err)
	}

	// Both sides' aggregates may be cached.
	s.Evict(ctx, p.TargetID)
	s.Evict(ctx, p.SubscriberID)
	return nil
}
