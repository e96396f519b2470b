// Package likes implements the likes service. One entity covers both post
// likes and comment likes; which topic an event lands on depends on the
// target, and the two are counted separately by statistics.
package likes

import (
	"context"
	"fmt"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/event"
	"socialnet/internal/domain/like"
	"socialnet/internal/infrastructure/postgres"
	"socialnet/internal/producer"
)

type UserVerifier interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type PostVerifier interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type CommentVerifier interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo     like.Repository
	tx       postgres.Transactor
	emitter  producer.EventEmitter
	users    UserVerifier
	posts    PostVerifier
	comments CommentVerifier
}

func New(
	repo like.Repository,
	tx postgres.Transactor,
	emitter producer.EventEmitter,
	users UserVerifier,
	posts PostVerifier,
	comments CommentVerifier,
) *Service {
	return &Service{
		repo:     repo,
		tx:       tx,
		emitter:  emitter,
		users:    users,
		posts:    posts,
		comments: comments,
	}
}

type CreateParams struct {
	UserID    int64 `json:"userId"`
	PostID    int64 `json:"postId"`
	CommentID int64 `json:"commentId"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*like.Like, error) {
	if params.UserID == 0 {
		return nil, fmt.Errorf("userId is required: %w", apperr.ErrValidationFailed)
	}
	if (params.PostID == 0) == (params.CommentID == 0) {
		return nil, fmt.Errorf("exactly one of postId and commentId is required: %w", apperr.ErrValidationFailed)
	}

	ok, err := s.users.Exists(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("verify user %d: %w", params.UserID, err)
	}
	if !ok {
		return nil, fmt.Errorf("user %d does not exist: %w", params.UserID, apperr.ErrValidationFailed)
	}

	if params.PostID != 0 {
		ok, err = s.posts.Exists(ctx, params.PostID)
		if err != nil {
			return nil, fmt.Errorf("verify post %d: %w", params.PostID, err)
		}
		if !ok {
			return nil, fmt.Errorf("post %d does not exist: %w", params.PostID, apperr.ErrValidationFailed)
		}
	} else {
		ok, err = s.comments.Exists(ctx, params.CommentID)
		if err != nil {
			return nil, fmt.Errorf("verify comment %d: %w", params.CommentID, err)
		}
		if !ok {
			return nil, fmt.Errorf("comment %d does not exist: %w", params.CommentID, apperr.ErrValidationFailed)
		}
	}

	l := &like.Like{
		UserID:    params.UserID,
		PostID:    params.PostID,
		CommentID: params.CommentID,
		CreatedAt: time.Now().UTC(),
	}

	payloadOf := func() event.Payload { return createdPayload(l) }
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, l); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, payloadOf())
	})
	if err != nil {
		return nil, fmt.Errorf("create like: %w", err)
	}

	s.emitter.EmitCommitted(ctx, payloadOf())

	return l, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*like.Like, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListIDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	return s.repo.ListIDsByPost(ctx, postID)
}

func (s *Service) ListIDsByComment(ctx context.Context, commentID int64) ([]int64, error) {
	return s.repo.ListIDsByComment(ctx, commentID)
}

func (s *Service) CountByPost(ctx context.Context, postID int64) (int64, error) {
	return s.repo.CountByPost(ctx, postID)
}

func (s *Service) CountByComment(ctx context.Context, commentID int64) (int64, error) {
	return s.repo.CountByComment(ctx, commentID)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	payload := deletedPayload(l)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, payload)
	})
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}

	s.emitter.EmitCommitted(ctx, payload)

	return nil
}

func createdPayload(l *like.Like) event.Payload {
	if l.IsPostLike() {
		return event.PostLikeCreated{PostLikeSnapshot: postSnapshot(l)}
	}
	return event.CommentLikeCreated{CommentLikeSnapshot: commentSnapshot(l)}
}

func deletedPayload(l *like.Like) event.Payload {
	if l.IsPostLike() {
		return event.PostLikeDeleted{PostLikeSnapshot: postSnapshot(l)}
	}
	return event.CommentLikeDeleted{CommentLikeSnapshot: commentSnapshot(l)}
}

func postSnapshot(l *like.Like) event.PostLikeSnapshot {
	return event.PostLikeSnapshot{
		LikeID:    l.ID,
		UserID:    l.UserID,
		PostID:    l.PostID,
		CreatedAt: l.CreatedAt,
	}
}

func commentSnapshot(l *like.Like) event.CommentLikeSnapshot {
	return event.CommentLikeSnapshot{
		LikeID:    l.ID,
		UserID:    l.UserID,
		CommentID: l.CommentID,
		CreatedAt: l.CreatedAt,
	}
}
