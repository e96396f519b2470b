package likes

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/event"
	"socialnet/internal/domain/like"
)

type txStub struct{}

func (txStub) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type emitterStub struct {
	emitted []event.Payload
}

func (e *emitterStub) EmitPending(ctx context.Context, p event.Payload) error { return nil }
func (e *emitterStub) EmitCommitted(ctx context.Context, p event.Payload)     { e.emitted = append(e.emitted, p) }

type memLikeRepo struct {
	likes  map[int64]*like.Like
	nextID int64
}

func newMemLikeRepo() *memLikeRepo {
	return &memLikeRepo{likes: make(map[int64]*like.Like), nextID: 1}
}

func (m *memLikeRepo) Create(ctx context.Context, l *like.Like) error {
	l.ID = m.nextID
	m.nextID++
	m.likes[l.ID] = l
	return nil
}

func (m *memLikeRepo) GetByID(ctx context.Context, id int64) (*like.Like, error) {
	l, ok := m.likes[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLikeRepo) ListIDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	var out []int64
	for id, l := range m.likes {
		if l.PostID == postID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memLikeRepo) ListIDsByComment(ctx context.Context, commentID int64) ([]int64, error) {
	var out []int64
	for id, l := range m.likes {
		if l.CommentID == commentID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memLikeRepo) CountByPost(ctx context.Context, postID int64) (int64, error) {
	ids, _ := m.ListIDsByPost(ctx, postID)
	return int64(len(ids)), nil
}

func (m *memLikeRepo) CountByComment(ctx context.Context, commentID int64) (int64, error) {
	ids, _ := m.ListIDsByComment(ctx, commentID)
	return int64(len(ids)), nil
}

func (m *memLikeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.likes[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.likes, id)
	return nil
}

type verifierStub struct {
	exists bool
	err    error
}

func (v verifierStub) Exists(ctx context.Context, id int64) (bool, error) {
	return v.exists, v.err
}

func newTestService() (*Service, *memLikeRepo, *emitterStub) {
	repo := newMemLikeRepo()
	emitter := &emitterStub{}
	ok := verifierStub{exists: true}
	return New(repo, txStub{}, emitter, ok, ok, ok), repo, emitter
}

func TestCreatePostLike(t *testing.T) {
	svc, _, emitter := newTestService()

	l, err := svc.Create(context.Background(), CreateParams{UserID: 7, PostID: 42})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !l.IsPostLike() {
		t.Fatal("want a post like")
	}

	if len(emitter.emitted) != 1 {
		t.Fatalf("emitted = %d, want 1", len(emitter.emitted))
	}
	got := emitter.emitted[0]
	if got.EventType() != "PostLikeCreated" || got.Topic() != event.TopicPostLikeCreated {
		t.Fatalf("emitted %s on %s", got.EventType(), got.Topic())
	}
	if got.Key() != l.ID {
		t.Fatalf("partition key = %d, want the like's own id %d", got.Key(), l.ID)
	}
}

func TestCreateCommentLike(t *testing.T) {
	svc, _, emitter := newTestService()

	l, err := svc.Create(context.Background(), CreateParams{UserID: 7, CommentID: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.IsPostLike() {
		t.Fatal("want a comment like")
	}

	got := emitter.emitted[0]
	if got.EventType() != "CommentLikeCreated" || got.Topic() != event.TopicCommentLikeCreated {
		t.Fatalf("emitted %s on %s", got.EventType(), got.Topic())
	}
}

func TestCreateRequiresExactlyOneTarget(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateParams{UserID: 7}); !errors.Is(err, apperr.ErrValidationFailed) {
		t.Fatalf("no target: want ErrValidationFailed, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateParams{UserID: 7, PostID: 42, CommentID: 3}); !errors.Is(err, apperr.ErrValidationFailed) {
		t.Fatalf("both targets: want ErrValidationFailed, got %v", err)
	}
}

func TestCreateRejectsUnknownTarget(t *testing.T) {
	repo := newMemLikeRepo()
	emitter := &emitterStub{}
	svc := New(repo, txStub{}, emitter, verifierStub{exists: true}, verifierStub{exists: false}, verifierStub{exists: true})

	_, err := svc.Create(context.Background(), CreateParams{UserID: 7, PostID: 42})
	if !errors.Is(err, apperr.ErrValidationFailed) {
		t.Fatalf("want ErrValidationFailed, got %v", err)
	}
}

func TestDeleteEmitsMatchingPayload(t *testing.T) {
	svc, repo, emitter := newTestService()
	ctx := context.Background()

	l := &like.Like{UserID: 7, CommentID: 3, CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, l); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(emitter.emitted) != 1 {
		t.Fatalf("emitted = %d, want 1", len(emitter.emitted))
	}
	got := emitter.emitted[0]
	if got.EventType() != "CommentLikeDeleted" || got.Topic() != event.TopicCommentLikeDeleted {
		t.Fatalf("emitted %s on %s", got.EventType(), got.Topic())
	}
}

func TestDeleteUnknownLike(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.Delete(context.Background(), 99); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
