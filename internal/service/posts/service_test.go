package posts

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/event"
	"socialnet/internal/domain/post"
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

type memPostRepo struct {
	posts  map[int64]*post.Post
	nextID int64
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[int64]*post.Post), nextID: 1}
}

func (m *memPostRepo) Create(ctx context.Context, p *post.Post) error {
	p.ID = m.nextID
	m.nextID++
	m.posts[p.ID] = p
	return nil
}

func (m *memPostRepo) GetByID(ctx context.Context, id int64) (*post.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPostRepo) ListByUser(ctx context.Context, userID int64) ([]*post.Post, error) {
	var out []*post.Post
	for _, p := range m.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPostRepo) ListIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	var out []int64
	for id, p := range m.posts {
		if p.UserID == userID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memPostRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	ids, _ := m.ListIDsByUser(ctx, userID)
	return int64(len(ids)), nil
}

func (m *memPostRepo) Update(ctx context.Context, p *post.Post) error {
	if _, ok := m.posts[p.ID]; !ok {
		return apperr.ErrNotFound
	}
	m.posts[p.ID] = p
	return nil
}

func (m *memPostRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

type verifierStub struct {
	exists bool
	err    error
}

func (v verifierStub) Exists(ctx context.Context, id int64) (bool, error) {
	return v.exists, v.err
}

type cascadeStub struct {
	ids     []int64
	deleted []int64
	failOn  int64
	errOn   error
}

func (c *cascadeStub) ListIDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	return c.ids, nil
}

func (c *cascadeStub) CountByPost(ctx context.Context, postID int64) (int64, error) {
	return int64(len(c.ids)), nil
}

func (c *cascadeStub) Delete(ctx context.Context, id int64) error {
	if c.failOn == id {
		return c.errOn
	}
	c.deleted = append(c.deleted, id)
	return nil
}

type fixture struct {
	repo     *memPostRepo
	emitter  *emitterStub
	comments *cascadeStub
	likes    *cascadeStub
	svc      *Service
}

func newFixture(users verifierStub) *fixture {
	f := &fixture{
		repo:     newMemPostRepo(),
		emitter:  &emitterStub{},
		comments: &cascadeStub{},
		likes:    &cascadeStub{},
	}
	f.svc = New(f.repo, txStub{}, f.emitter, nil, users, f.comments, f.likes)
	return f
}

func (f *fixture) seed(t *testing.T, userID int64) *post.Post {
	t.Helper()
	p := &post.Post{UserID: userID, Content: "hello", CreatedAt: time.Now().UTC()}
	if err := f.repo.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCreatePublishesPostCreated(t *testing.T) {
	f := newFixture(verifierStub{exists: true})

	p, err := f.svc.Create(context.Background(), CreateParams{UserID: 7, Content: "hi"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("post id not assigned")
	}

	if len(f.emitter.emitted) != 1 {
		t.Fatalf("emitted = %d events, want 1", len(f.emitter.emitted))
	}
	got := f.emitter.emitted[0]
	if got.EventType() != "PostCreated" || got.Topic() != event.TopicPostCreated {
		t.Fatalf("emitted %s on %s", got.EventType(), got.Topic())
	}
	if got.Key() != p.ID {
		t.Fatalf("partition key = %d, want the post's own id %d", got.Key(), p.ID)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	f := newFixture(verifierStub{exists: true})

	_, err := f.svc.Create(context.Background(), CreateParams{UserID: 7})
	if !errors.Is(err, apperr.ErrValidationFailed) {
		t.Fatalf("want ErrValidationFailed, got %v", err)
	}
}

func TestCreateRejectsUnknownAuthor(t *testing.T) {
	f := newFixture(verifierStub{exists: false})

	_, err := f.svc.Create(context.Background(), CreateParams{UserID: 7, Content: "hi"})
	if !errors.Is(err, apperr.ErrValidationFailed) {
		t.Fatalf("want ErrValidationFailed, got %v", err)
	}
	if len(f.emitter.emitted) != 0 {
		t.Fatal("rejected write must not publish")
	}
}

// Existence checks gate writes hard: an unreachable users service rejects the
// create instead of assuming the author exists.
func TestCreateHardFailsWhenVerifierDown(t *testing.T) {
	f := newFixture(verifierStub{err: apperr.ErrTransientDependency})

	_, err := f.svc.Create(context.Background(), CreateParams{UserID: 7, Content: "hi"})
	if !errors.Is(err, apperr.ErrTransientDependency) {
		t.Fatalf("want ErrTransientDependency, got %v", err)
	}
}

func TestDeleteCascadesChildrenThenPost(t *testing.T) {
	f := newFixture(verifierStub{exists: true})
	p := f.seed(t, 7)
	f.comments.ids = []int64{101, 102}
	f.likes.ids = []int64{201}

	if err := f.svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(f.comments.deleted) != 2 || len(f.likes.deleted) != 1 {
		t.Fatalf("cascade deleted %v comments, %v likes", f.comments.deleted, f.likes.deleted)
	}
	if _, err := f.repo.GetByID(context.Background(), p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatal("post must be gone after cascade")
	}

	// Each child delete publishes remotely; locally only the parent's event.
	if len(f.emitter.emitted) != 1 || f.emitter.emitted[0].EventType() != "PostDeleted" {
		t.Fatalf("emitted = %v, want exactly one PostDeleted", f.emitter.emitted)
	}
}

// A failing child aborts the cascade with the parent intact: already-deleted
// children stay deleted and nothing is compensated.
func TestDeleteChildFailureKeepsPost(t *testing.T) {
	f := newFixture(verifierStub{exists: true})
	p := f.seed(t, 7)
	f.comments.ids = []int64{101, 102}
	f.comments.failOn = 102
	f.comments.errOn = apperr.ErrTransientDependency

	err := f.svc.Delete(context.Background(), p.ID)
	if !errors.Is(err, apperr.ErrTransientDependency) {
		t.Fatalf("want propagated child failure, got %v", err)
	}

	if _, err := f.repo.GetByID(context.Background(), p.ID); err != nil {
		t.Fatal("post must survive an aborted cascade")
	}
	if len(f.comments.deleted) != 1 {
		t.Fatalf("children deleted before the failure stay deleted, got %v", f.comments.deleted)
	}
	if len(f.emitter.emitted) != 0 {
		t.Fatal("aborted cascade must not publish PostDeleted")
	}
}

// A child already gone on redelivery is success, not failure.
func TestDeleteToleratesChildNotFound(t *testing.T) {
	f := newFixture(verifierStub{exists: true})
	p := f.seed(t, 7)
	f.likes.ids = []int64{201}
	f.likes.failOn = 201
	f.likes.errOn = apperr.ErrNotFound

	if err := f.svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.emitter.emitted) != 1 {
		t.Fatal("cascade with an already-gone child must still complete")
	}
}

func TestDeleteUnknownPost(t *testing.T) {
	f := newFixture(verifierStub{exists: true})

	if err := f.svc.Delete(context.Background(), 99); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

type failingCounts struct{ cascadeStub }

func (failingCounts) CountByPost(ctx context.Context, postID int64) (int64, error) {
	return 0, apperr.ErrTransientDependency
}

// Count queries on the read path degrade to zero instead of failing the read.
func TestGetDegradesCountsToZero(t *testing.T) {
	f := newFixture(verifierStub{exists: true})
	p := f.seed(t, 7)
	f.svc.comments = &failingCounts{}
	f.svc.likes = &failingCounts{}

	v, err := f.svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("read must not fail on count degradation: %v", err)
	}
	if v.CommentsCount != 0 || v.LikesCount != 0 {
		t.Fatalf("counts = %d/%d, want 0/0", v.CommentsCount, v.LikesCount)
	}
}

func TestUpdatePublishesPostUpdated(t *testing.T) {
	f := newFixture(verifierStub{exists: true})
	p := f.seed(t, 7)

	updated, err := f.svc.Update(context.Background(), p.ID, UpdateParams{Content: "edited"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "edited" {
		t.Fatalf("content = %q", updated.Content)
	}
	if len(f.emitter.emitted) != 1 || f.emitter.emitted[0].EventType() != "PostUpdated" {
		t.Fatalf("emitted = %v, want PostUpdated", f.emitter.emitted)
	}
}
