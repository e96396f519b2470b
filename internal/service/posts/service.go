// Package posts implements the posts service: CRUD over posts, the cascade
// that removes a post's comments and likes before the post itself, and the
// cached read view with soft-failed counters.
package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/event"
	"socialnet/internal/domain/post"
	"socialnet/internal/infrastructure/postgres"
	"socialnet/internal/infrastructure/redis"
	"socialnet/internal/producer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cascadeFanout = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "posts_cascade_deleted_children",
	Help:    "Number of child entities deleted per post cascade",
	Buckets: []float64{0, 1, 5, 10, 50, 100, 500},
})

const cacheRegion = "posts"

// UserVerifier gates post creation on the author existing. Hard-fail: an
// unreachable users service rejects the write.
type UserVerifier interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// CommentCascade is the slice of the comments service the cascade needs. Each
// Delete runs the comment's own cascade remotely and publishes its event.
type CommentCascade interface {
	ListIDsByPost(ctx context.Context, postID int64) ([]int64, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type LikeCascade interface {
	ListIDsByPost(ctx context.Context, postID int64) ([]int64, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo     post.Repository
	tx       postgres.Transactor
	emitter  producer.EventEmitter
	cache    *redis.Cache
	users    UserVerifier
	comments CommentCascade
	likes    LikeCascade
}

func New(
	repo post.Repository,
	tx postgres.Transactor,
	emitter producer.EventEmitter,
	cache *redis.Cache,
	users UserVerifier,
	comments CommentCascade,
	likes LikeCascade,
) *Service {
	return &Service{
		repo:     repo,
		tx:       tx,
		emitter:  emitter,
		cache:    cache,
		users:    users,
		comments: comments,
		likes:    likes,
	}
}

type CreateParams struct {
	UserID  int64  `json:"userId"`
	Content string `json:"content"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*post.Post, error) {
	if params.UserID == 0 || params.Content == "" {
		return nil, fmt.Errorf("userId and content are required: %w", apperr.ErrValidationFailed)
	}

	ok, err := s.users.Exists(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("verify user %d: %w", params.UserID, err)
	}
	if !ok {
		return nil, fmt.Errorf("user %d does not exist: %w", params.UserID, apperr.ErrValidationFailed)
	}

	now := time.Now().UTC()
	p := &post.Post{
		UserID:    params.UserID,
		Content:   params.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, p); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, event.PostCreated{PostSnapshot: snapshot(p)})
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.emitter.EmitCommitted(ctx, event.PostCreated{PostSnapshot: snapshot(p)})

	return p, nil
}

// View is the cached read shape; the counts come from sibling services and
// degrade to zero when those are unavailable.
type View struct {
	post.Post
	CommentsCount int64 `json:"commentsCount"`
	LikesCount    int64 `json:"likesCount"`
}

func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	key := strconv.FormatInt(id, 10)

	if s.cache != nil {
		var cached View
		if hit, err := s.cache.Get(ctx, cacheRegion, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := &View{
		Post:          *p,
		CommentsCount: softCount(ctx, "comments", id, s.comments.CountByPost),
		LikesCount:    softCount(ctx, "likes", id, s.likes.CountByPost),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheRegion, key, v); err != nil {
			slog.Warn("cache post view", "post_id", id, "error", err)
		}
	}

	return v, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*post.Post, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return s.repo.ListIDsByUser(ctx, userID)
}

func (s *Service) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountByUser(ctx, userID)
}

// Exists is the hard-fail existence check sibling services gate writes on.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type UpdateParams struct {
	Content string `json:"content"`
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*post.Post, error) {
	if params.Content == "" {
		return nil, fmt.Errorf("content is required: %w", apperr.ErrValidationFailed)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Content = params.Content
	p.UpdatedAt = time.Now().UTC()

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, p); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, event.PostUpdated{PostSnapshot: snapshot(p)})
	})
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	s.emitter.EmitCommitted(ctx, event.PostUpdated{PostSnapshot: snapshot(p)})
	s.evict(ctx, id)

	return p, nil
}

// Delete removes the post's comments and likes through their owning services,
// then the post itself. Children are processed as a flat worklist; every child
// delete publishes its own Deleted event remotely. If a child fails the
// cascade stops: children already deleted stay deleted, the post survives, and
// nothing is compensated.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	commentIDs, err := s.comments.ListIDsByPost(ctx, id)
	if err != nil {
		return fmt.Errorf("list comments of post %d: %w", id, err)
	}
	likeIDs, err := s.likes.ListIDsByPost(ctx, id)
	if err != nil {
		return fmt.Errorf("list likes of post %d: %w", id, err)
	}

	deleted := 0
	for _, cid := range commentIDs {
		if err := s.comments.Delete(ctx, cid); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("cascade delete comment %d: %w", cid, err)
		}
		deleted++
	}
	for _, lid := range likeIDs {
		if err := s.likes.Delete(ctx, lid); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("cascade delete like %d: %w", lid, err)
		}
		deleted++
	}
	cascadeFanout.Observe(float64(deleted))

	payload := event.PostDeleted{PostSnapshot: snapshot(p)}
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, payload)
	})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.emitter.EmitCommitted(ctx, payload)
	s.evict(ctx, id)

	return nil
}

func (s *Service) evict(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Evict(ctx, cacheRegion, strconv.FormatInt(id, 10)); err != nil {
		slog.Warn("evict post view", "post_id", id, "error", err)
	}
}

func snapshot(p *post.Post) event.PostSnapshot {
	return event.PostSnapshot{
		PostID:    p.ID,
		UserID:    p.UserID,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// softCount degrades a failed remote count to zero; read aggregates favor
// availability over correctness.
func softCount(ctx context.Context, what string, id int64, fn func(context.Context, int64) (int64, error)) int64 {
	n, err := fn(ctx, id)
	if err != nil {
		slog.Warn("count query degraded to zero", "dependency", what, "id", id, "error", err)
		return 0
	}
	return n
}
