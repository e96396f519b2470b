// Package comments implements the comments service. A comment owns its
// comment-likes, so deleting one cascades through the likes service first.
package comments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/comment"
	"socialnet/internal/domain/event"
	"socialnet/internal/infrastructure/postgres"
	"socialnet/internal/producer"
)

// PostVerifier gates comment creation on the post existing.
type PostVerifier interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type LikeCascade interface {
	ListIDsByComment(ctx context.Context, commentID int64) ([]int64, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo    comment.Repository
	tx      postgres.Transactor
	emitter producer.EventEmitter
	posts   PostVerifier
	likes   LikeCascade
}

func New(
	repo comment.Repository,
	tx postgres.Transactor,
	emitter producer.EventEmitter,
	posts PostVerifier,
	likes LikeCascade,
) *Service {
	return &Service{
		repo:    repo,
		tx:      tx,
		emitter: emitter,
		posts:   posts,
		likes:   likes,
	}
}

type CreateParams struct {
	PostID  int64  `json:"postId"`
	UserID  int64  `json:"userId"`
	Content string `json:"content"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*comment.Comment, error) {
	if params.PostID == 0 || params.UserID == 0 || params.Content == "" {
		return nil, fmt.Errorf("postId, userId and content are required: %w", apperr.ErrValidationFailed)
	}

	ok, err := s.posts.Exists(ctx, params.PostID)
	if err != nil {
		return nil, fmt.Errorf("verify post %d: %w", params.PostID, err)
	}
	if !ok {
		return nil, fmt.Errorf("post %d does not exist: %w", params.PostID, apperr.ErrValidationFailed)
	}

	now := time.Now().UTC()
	c := &comment.Comment{
		PostID:    params.PostID,
		UserID:    params.UserID,
		Content:   params.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, c); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, event.CommentCreated{CommentSnapshot: snapshot(c)})
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.emitter.EmitCommitted(ctx, event.CommentCreated{CommentSnapshot: snapshot(c)})

	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*comment.Comment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPost(ctx context.Context, postID int64) ([]*comment.Comment, error) {
	return s.repo.ListByPost(ctx, postID)
}

func (s *Service) ListIDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	return s.repo.ListIDsByPost(ctx, postID)
}

func (s *Service) CountByPost(ctx context.Context, postID int64) (int64, error) {
	return s.repo.CountByPost(ctx, postID)
}

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

// Delete cascades the comment's likes before the comment itself; same
// no-compensation contract as every other cascade.
func (s *Service) Delete(ctx context.Context, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	likeIDs, err := s.likes.ListIDsByComment(ctx, id)
	if err != nil {
		return fmt.Errorf("list likes of comment %d: %w", id, err)
	}
	for _, lid := range likeIDs {
		if err := s.likes.Delete(ctx, lid); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("cascade delete like %d: %w", lid, err)
		}
	}

	payload := event.CommentDeleted{CommentSnapshot: snapshot(c)}
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, payload)
	})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	s.emitter.EmitCommitted(ctx, payload)

	return nil
}

func snapshot(c *comment.Comment) event.CommentSnapshot {
	return event.CommentSnapshot{
		CommentID: c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
