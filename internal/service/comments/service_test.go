package comments

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/comment"
	"socialnet/internal/domain/event"
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

type memCommentRepo struct {
	comments map[int64]*comment.Comment
	nextID   int64
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: make(map[int64]*comment.Comment), nextID: 1}
}

func (m *memCommentRepo) Create(ctx context.Context, c *comment.Comment) error {
	c.ID = m.nextID
	m.nextID++
	m.comments[c.ID] = c
	return nil
}

func (m *memCommentRepo) GetByID(ctx context.Context, id int64) (*comment.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCommentRepo) ListByPost(ctx context.Context, postID int64) ([]*comment.Comment, error) {
	var out []*comment.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCommentRepo) ListIDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	var out []int64
	for id, c := range m.comments {
		if c.PostID == postID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memCommentRepo) CountByPost(ctx context.Context, postID int64) (int64, error) {
	ids, _ := m.ListIDsByPost(ctx, postID)
	return int64(len(ids)), nil
}

func (m *memCommentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.comments[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

type verifierStub struct {
	exists bool
	err    error
}

func (v verifierStub) Exists(ctx context.Context, id int64) (bool, error) {
	return v.exists, v.err
}

type likeCascadeStub struct {
	ids     []int64
	deleted []int64
	failOn  int64
	errOn   error
}

func (l *likeCascadeStub) ListIDsByComment(ctx context.Context, commentID int64) ([]int64, error) {
	return l.ids, nil
}

func (l *likeCascadeStub) Delete(ctx context.Context, id int64) error {
	if l.failOn == id {
		return l.errOn
	}
	l.deleted = append(l.deleted, id)
	return nil
}

func newTestService(posts verifierStub) (*Service, *memCommentRepo, *emitterStub, *likeCascadeStub) {
	repo := newMemCommentRepo()
	emitter := &emitterStub{}
	likes := &likeCascadeStub{}
	return New(repo, txStub{}, emitter, posts, likes), repo, emitter, likes
}

func seed(t *testing.T, repo *memCommentRepo) *comment.Comment {
	t.Helper()
	c := &comment.Comment{PostID: 42, UserID: 7, Content: "nice", CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCreatePublishesCommentCreated(t *testing.T) {
	svc, _, emitter, _ := newTestService(verifierStub{exists: true})

	c, err := svc.Create(context.Background(), CreateParams{PostID: 42, UserID: 7, Content: "nice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(emitter.emitted) != 1 {
		t.Fatalf("emitted = %d, want 1", len(emitter.emitted))
	}
	got := emitter.emitted[0]
	if got.EventType() != "CommentCreated" || got.Key() != c.ID {
		t.Fatalf("emitted %s key %d", got.EventType(), got.Key())
	}
}

func TestCreateRejectsUnknownPost(t *testing.T) {
	svc, _, emitter, _ := newTestService(verifierStub{exists: false})

	_, err := svc.Create(context.Background(), CreateParams{PostID: 42, UserID: 7, Content: "nice"})
	if !errors.Is(err, apperr.ErrValidationFailed) {
		t.Fatalf("want ErrValidationFailed, got %v", err)
	}
	if len(emitter.emitted) != 0 {
		t.Fatal("rejected write must not publish")
	}
}

func TestCreateHardFailsWhenVerifierDown(t *testing.T) {
	svc, _, _, _ := newTestService(verifierStub{err: apperr.ErrTransientDependency})

	_, err := svc.Create(context.Background(), CreateParams{PostID: 42, UserID: 7, Content: "nice"})
	if !errors.Is(err, apperr.ErrTransientDependency) {
		t.Fatalf("want ErrTransientDependency, got %v", err)
	}
}

func TestDeleteCascadesLikesThenComment(t *testing.T) {
	svc, repo, emitter, likes := newTestService(verifierStub{exists: true})
	c := seed(t, repo)
	likes.ids = []int64{201, 202}

	if err := svc.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(likes.deleted) != 2 {
		t.Fatalf("cascade deleted likes %v, want 2", likes.deleted)
	}
	if _, err := repo.GetByID(context.Background(), c.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatal("comment must be gone after cascade")
	}
	if len(emitter.emitted) != 1 || emitter.emitted[0].EventType() != "CommentDeleted" {
		t.Fatalf("emitted = %v, want exactly one CommentDeleted", emitter.emitted)
	}
}

func TestDeleteLikeFailureKeepsComment(t *testing.T) {
	svc, repo, emitter, likes := newTestService(verifierStub{exists: true})
	c := seed(t, repo)
	likes.ids = []int64{201}
	likes.failOn = 201
	likes.errOn = apperr.ErrTransientDependency

	err := svc.Delete(context.Background(), c.ID)
	if !errors.Is(err, apperr.ErrTransientDependency) {
		t.Fatalf("want propagated failure, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), c.ID); err != nil {
		t.Fatal("comment must survive an aborted cascade")
	}
	if len(emitter.emitted) != 0 {
		t.Fatal("aborted cascade must not publish")
	}
}

func TestExists(t *testing.T) {
	svc, repo, _, _ := newTestService(verifierStub{exists: true})
	c := seed(t, repo)

	ok, err := svc.Exists(context.Background(), c.ID)
	if err != nil || !ok {
		t.Fatalf("exists = %v, %v", ok, err)
	}
	ok, err = svc.Exists(context.Background(), 999)
	if err != nil || ok {
		t.Fatalf("exists(999) = %v, %v; want false, nil", ok, err)
	}
}
