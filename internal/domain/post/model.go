package post

import (
	"context"
	"time"
)

type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Repository interface {
	Create(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	ListByUser(ctx context.Context, userID int64) ([]*Post, error)
	ListIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id int64) error
}
