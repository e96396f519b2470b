package comment

import (
	"context"
	"time"
)

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	UserID    int64     `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Repository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*Comment, error)
	ListIDsByPost(ctx context.Context, postID int64) ([]int64, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}
