package posts

import (
	"context"
	"encoding/json"
	"fmt"

	"socialnet/internal/consumer"
	"socialnet/internal/domain/event"
)

// RegisterHandlers subscribes the posts service to the events that invalidate
// a cached post view: comment and post-like events move its counters.
func (s *Service) RegisterHandlers(d *consumer.Dispatcher) {
	d.Handle("CommentCreated", s.onCommentEvent)
	d.Handle("CommentDeleted", s.onCommentEvent)
	d.Handle("PostLikeCreated", s.onPostLikeEvent)
	d.Handle("PostLikeDeleted", s.onPostLikeEvent)
}

func (s *Service) onCommentEvent(ctx context.Context, env *event.Envelope) error {
	var p event.CommentSnapshot
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Type, err)
	}

	s.evict(ctx, p.PostID)
	return nil
}

func (s *Service) onPostLikeEvent(ctx context.Context, env *event.Envelope) error {
	var p event.PostLikeSnapshot
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Type, err)
	}

	s.evict(ctx, p.PostID)
	return nil
}
