package stats

import (
	"context"
	"time"
)

type EntityType string

const (
	EntityUser         EntityType = "user"
	EntityPost         EntityType = "post"
	EntityComment      EntityType = "comment"
	EntityPostLike     EntityType = "post_like"
	EntityCommentLike  EntityType = "comment_like"
	EntitySubscription EntityType = "subscription"
	EntityMedia        EntityType = "media"
)

// Counter is one row per (entity type, calendar date). A delete decrements the
// same day's created count even when the entity was created on an earlier day,
// so CreatedCount can go negative; that is the accepted accounting model.
type Counter struct {
	Entity       EntityType `json:"entityType"`
	Day          time.Time  `json:"date"`
	CreatedCount int64      `json:"createdCount"`
	DeletedCount int64      `json:"deletedCount"`
}

// Repository applies counter deltas with single-statement atomic upserts, so
// concurrent handlers for the same row cannot lose updates.
type Repository interface {
	ApplyCreated(ctx context.Context, entity EntityType, day time.Time) error
	ApplyDeleted(ctx context.Context, entity EntityType, day time.Time) error
	GetByDate(ctx context.Context, day time.Time) ([]*Counter, error)
	GetAll(ctx context.Context) ([]*Counter, error)
	DeleteByDate(ctx context.Context, day time.Time) error
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
