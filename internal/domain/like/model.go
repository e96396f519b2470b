package like

import (
	"context"
	"time"
)

// Like targets exactly one of PostID/CommentID; the unset side is zero.
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId,omitempty"`
	CommentID int64     `json:"commentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsPostLike reports whether the like targets a post.
func (l *Like) IsPostLike() bool { return l.PostID != 0 }

type Repository interface {
	Create(ctx context.Context, l *Like) error
	GetByID(ctx context.Context, id int64) (*Like, error)
	ListIDsByPost(ctx context.Context, postID int64) ([]int64, error)
	ListIDsByComment(ctx context.Context, commentID int64) ([]int64, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)
	CountByComment(ctx context.Context, commentID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}
