package media

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/event"
	"socialnet/internal/domain/media"
)

type txStub struct{}

func (txStub) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type emitterStub struct{}

func (emitterStub) EmitPending(ctx context.Context, p event.Payload) error { return nil }
func (emitterStub) EmitCommitted(ctx context.Context, p event.Payload)     {}

type verifierStub struct{}

func (verifierStub) Exists(ctx context.Context, id int64) (bool, error) { return true, nil }

type subsStub struct {
	ids []int64
	err error
}

func (s subsStub) ListSubscriberIDs(ctx context.Context, targetID int64) ([]int64, error) {
	return s.ids, s.err
}

type notifRepoStub struct {
	created []*media.Notification
	err     error
}

func (n *notifRepoStub) Create(ctx context.Context, notif *media.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.created = append(n.created, notif)
	return nil
}

func (n *notifRepoStub) ListByUser(ctx context.Context, userID int64) ([]*media.Notification, error) {
	return n.created, nil
}

func uploadEnvelope(t *testing.T, ownerID, mediaID int64) *event.Envelope {
	t.Helper()
	payload, err := json.Marshal(event.MediaSnapshot{
		MediaID: mediaID, UserID: ownerID, URL: "http://cdn/x.jpg", CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return &event.Envelope{ID: "e1", Type: "MediaUploaded", Payload: payload}
}

func newHandlerService(subs subsStub, notifs *notifRepoStub) *Service {
	return New(nil, notifs, txStub{}, emitterStub{}, verifierStub{}, subs)
}

func TestUploadFansOutToSubscribers(t *testing.T) {
	notifs := &notifRepoStub{}
	svc := newHandlerService(subsStub{ids: []int64{1, 2, 3}}, notifs)

	if err := svc.onMediaUploaded(context.Background(), uploadEnvelope(t, 7, 99)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(notifs.created) != 3 {
		t.Fatalf("notifications = %d, want one per subscriber", len(notifs.created))
	}
	for _, n := range notifs.created {
		if n.OwnerID != 7 || n.MediaID != 99 {
			t.Fatalf("notification = %+v", n)
		}
	}
}

// An unreachable subscriptions service degrades to an empty fan-out; the
// event is consumed, not retried forever.
func TestUploadDegradesWhenSubscriberListDown(t *testing.T) {
	notifs := &notifRepoStub{}
	svc := newHandlerService(subsStub{err: apperr.ErrTransientDependency}, notifs)

	if err := svc.onMediaUploaded(context.Background(), uploadEnvelope(t, 7, 99)); err != nil {
		t.Fatalf("degraded fan-out must succeed, got %v", err)
	}
	if len(notifs.created) != 0 {
		t.Fatal("no notifications expected")
	}
}

// A failing notification write is retryable: the bus redelivers.
func TestUploadRetryableOnNotificationFailure(t *testing.T) {
	notifs := &notifRepoStub{err: errors.New("db down")}
	svc := newHandlerService(subsStub{ids: []int64{1}}, notifs)

	err := svc.onMediaUploaded(context.Background(), uploadEnvelope(t, 7, 99))
	if err == nil || !apperr.IsRetryable(err) {
		t.Fatalf("want retryable error, got %v", err)
	}
}
