package event

import "time"

// Payload is implemented by every event body. Key returns the id of the entity
// that changed; it is the partition key, so one entity's history stays ordered
// while unrelated entities interleave freely.
type Payload interface {
	EventType() string
	Topic() string
	Key() int64
}

// UserSnapshot carries enough of the user to reconstruct it without a callback
// to the users service.
type UserSnapshot struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserCreated struct{ UserSnapshot }
type UserUpdated struct{ UserSnapshot }
type UserDeleted struct{ UserSnapshot }

func (UserCreated) EventType() string { return "UserCreated" }
func (UserCreated) Topic() string     { return TopicUserCreated }
func (p UserCreated) Key() int64      { return p.UserID }

func (UserUpdated) EventType() string { return "UserUpdated" }
func (UserUpdated) Topic() string     { return TopicUserUpdated }
func (p UserUpdated) Key() int64      { return p.UserID }

func (UserDeleted) EventType() string { return "UserDeleted" }
func (UserDeleted) Topic() string     { return TopicUserDeleted }
func (p UserDeleted) Key() int64      { return p.UserID }

type PostSnapshot struct {
	PostID    int64     `json:"postId"`
	UserID    int64     `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PostCreated struct{ PostSnapshot }
type PostUpdated struct{ PostSnapshot }
type PostDeleted struct{ PostSnapshot }

func (PostCreated) EventType() string { return "PostCreated" }
func (PostCreated) Topic() string     { return TopicPostCreated }
func (p PostCreated) Key() int64      { return p.PostID }

func (PostUpdated) EventType() string { return "PostUpdated" }
func (PostUpdated) Topic() string     { return TopicPostUpdated }
func (p PostUpdated) Key() int64      { return p.PostID }

func (PostDeleted) EventType() string { return "PostDeleted" }
func (PostDeleted) Topic() string     { return TopicPostDeleted }
func (p PostDeleted) Key() int64      { return p.PostID }

type CommentSnapshot struct {
	CommentID int64     `json:"commentId"`
	PostID    int64     `json:"postId"`
	UserID    int64     `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CommentCreated struct{ CommentSnapshot }
type CommentDeleted struct{ CommentSnapshot }

func (CommentCreated) EventType() string { return "CommentCreated" }
func (CommentCreated) Topic() string     { return TopicCommentCreated }
func (p CommentCreated) Key() int64      { return p.CommentID }

func (CommentDeleted) EventType() string { return "CommentDeleted" }
func (CommentDeleted) Topic() string     { return TopicCommentDeleted }
func (p CommentDeleted) Key() int64      { return p.CommentID }

// Like payloads carry the liker and exactly one of postId/commentId; the
// distinction is baked into the type rather than a nullable pair.
type PostLikeSnapshot struct {
	LikeID    int64     `json:"likeId"`
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

type PostLikeCreated struct{ PostLikeSnapshot }
type PostLikeDeleted struct{ PostLikeSnapshot }

func (PostLikeCreated) EventType() string { return "PostLikeCreated" }
func (PostLikeCreated) Topic() string     { return TopicPostLikeCreated }
func (p PostLikeCreated) Key() int64      { return p.LikeID }

func (PostLikeDeleted) EventType() string { return "PostLikeDeleted" }
func (PostLikeDeleted) Topic() string     { return TopicPostLikeDeleted }
func (p PostLikeDeleted) Key() int64      { return p.LikeID }

type CommentLikeSnapshot struct {
	LikeID    int64     `json:"likeId"`
	UserID    int64     `json:"userId"`
	CommentID int64     `json:"commentId"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentLikeCreated struct{ CommentLikeSnapshot }
type CommentLikeDeleted struct{ CommentLikeSnapshot }

func (CommentLikeCreated) EventType() string { return "CommentLikeCreated" }
func (CommentLikeCreated) Topic() string     { return TopicCommentLikeCreated }
func (p CommentLikeCreated) Key() int64      { return p.LikeID }

func (CommentLikeDeleted) EventType() string { return "CommentLikeDeleted" }
func (CommentLikeDeleted) Topic() string     { return TopicCommentLikeDeleted }
func (p CommentLikeDeleted) Key() int64      { return p.LikeID }

type SubscriptionSnapshot struct {
	SubscriptionID int64     `json:"subscriptionId"`
	SubscriberID   int64     `json:"subscriberId"`
	TargetID       int64     `json:"targetId"`
	CreatedAt      time.Time `json:"createdAt"`
}

type SubscriptionCreated struct{ SubscriptionSnapshot }
type SubscriptionDeleted struct{ SubscriptionSnapshot }

func (SubscriptionCreated) EventType() string { return "SubscriptionCreated" }
func (SubscriptionCreated) Topic() string     { return TopicSubscriptionCreated }
func (p SubscriptionCreated) Key() int64      { return p.SubscriptionID }

func (SubscriptionDeleted) EventType() string { return "SubscriptionDeleted" }
func (SubscriptionDeleted) Topic() string     { return TopicSubscriptionDeleted }
func (p SubscriptionDeleted) Key() int64      { return p.SubscriptionID }

type MediaSnapshot struct {
	MediaID   int64     `json:"mediaId"`
	UserID    int64     `json:"userId"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mimeType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type MediaUploaded struct{ MediaSnapshot }
type MediaDeleted struct{ MediaSnapshot }

func (MediaUploaded) EventType() string { return "MediaUploaded" }
func (MediaUploaded) Topic() string     { return TopicMediaUpload }
func (p MediaUploaded) Key() int64      { return p.MediaID }

func (MediaDeleted) EventType() string { return "MediaDeleted" }
func (MediaDeleted) Topic() string     { return TopicMediaDeleted }
func (p MediaDeleted) Key() int64      { return p.MediaID }
