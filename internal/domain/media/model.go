package media

import (
	"context"
	"time"
)

// Media is upload metadata only; the bytes live elsewhere.
type Media struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mimeType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification is created for each subscriber when a followed user uploads
// media.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	OwnerID   int64     `json:"ownerId"`
	MediaID   int64     `json:"mediaId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository interface {
	Create(ctx context.Context, m *Media) error
	GetByID(ctx context.Context, id int64) (*Media, error)
	ListByUser(ctx context.Context, userID int64) ([]*Media, error)
	ListIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	Delete(ctx context.Context, id int64) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID int64) ([]*Notification, error)
}
