package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/consumer"
	"socialnet/internal/domain/event"
	"socialnet/internal/domain/media"
)

// RegisterHandlers subscribes the media service to its own upload events; the
// notification fan-out happens on consumption rather than in the upload
// request so a slow subscriber list never delays the upload.
func (s *Service) RegisterHandlers(d *consumer.Dispatcher) {
	d.Handle("MediaUploaded", s.onMediaUploaded)
}

func (s *Service) onMediaUploaded(ctx context.Context, env *event.Envelope) error {
	var p event.MediaSnapshot
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Type, err)
	}

	subscribers, err := s.subs.ListSubscriberIDs(ctx, p.UserID)
	if err != nil {
		// Degrade: the upload already happened, nobody gets notified.
		slog.Warn("subscriber list degraded to empty", "owner_id", p.UserID, "error", err)
		return nil
	}

	for _, uid := range subscribers {
		n := &media.Notification{
			UserID:    uid,
			OwnerID:   p.UserID,
			MediaID:   p.MediaID,
			Message:   fmt.Sprintf("user %d uploaded new media", p.UserID),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			return apperr.Retryable(fmt.Errorf("create notification for user %d: %w", uid, err))
		}
	}

	return nil
}
