// Package media implements upload metadata and the media-adjacent
// notifications: when a followed user uploads, each subscriber gets a
// notification row, fanned out by the media.upload event handler.
package media

import (
	"context"
	"fmt"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/event"
	"socialnet/internal/domain/media"
	"socialnet/internal/infrastructure/postgres"
	"socialnet/internal/producer"
)

type UserVerifier interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// SubscriberLister feeds the notification fan-out. Soft-fail: if the
// subscriptions service is down, the upload stands and nobody is notified.
type SubscriberLister interface {
	ListSubscriberIDs(ctx context.Context, targetID int64) ([]int64, error)
}

type Service struct {
	repo          media.Repository
	notifications media.NotificationRepository
	tx            postgres.Transactor
	emitter       producer.EventEmitter
	users         UserVerifier
	subs          SubscriberLister
}

func New(
	repo media.Repository,
	notifications media.NotificationRepository,
	tx postgres.Transactor,
	emitter producer.EventEmitter,
	users UserVerifier,
	subs SubscriberLister,
) *Service {
	return &Service{
		repo:          repo,
		notifications: notifications,
		tx:            tx,
		emitter:       emitter,
		users:         users,
		subs:          subs,
	}
}

type UploadParams struct {
	UserID   int64  `json:"userId"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
}

func (s *Service) Upload(ctx context.Context, params UploadParams) (*media.Media, error) {
	if params.UserID == 0 || params.URL == "" {
		return nil, fmt.Errorf("userId and url are required: %w", apperr.ErrValidationFailed)
	}

	ok, err := s.users.Exists(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("verify user %d: %w", params.UserID, err)
	}
	if !ok {
		return nil, fmt.Errorf("user %d does not exist: %w", params.UserID, apperr.ErrValidationFailed)
	}

	m := &media.Media{
		UserID:    params.UserID,
		URL:       params.URL,
		MimeType:  params.MimeType,
		CreatedAt: time.Now().UTC(),
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, m); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, event.MediaUploaded{MediaSnapshot: snapshot(m)})
	})
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	s.emitter.EmitCommitted(ctx, event.MediaUploaded{MediaSnapshot: snapshot(m)})

	return m, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*media.Media, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*media.Media, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return s.repo.ListIDsByUser(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	payload := event.MediaDeleted{MediaSnapshot: snapshot(m)}
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, payload)
	})
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}

	s.emitter.EmitCommitted(ctx, payload)

	return nil
}

func (s *Service) Notifications(ctx context.Context, userID int64) ([]*media.Notification, error) {
	return s.notifications.ListByUser(ctx, userID)
}

func snapshot(m *media.Media) event.MediaSnapshot {
	return event.MediaSnapshot{
		MediaID:   m.ID,
		UserID:    m.UserID,
		URL:       m.URL,
		MimeType:  m.MimeType,
		CreatedAt: m.CreatedAt,
	}
}
