package client

import (
	"context"
	"fmt"
)

type Users struct{ c *Client }

func NewUsers(baseURL string) *Users { return &Users{c: New(baseURL)} }

func (u *Users) Exists(ctx context.Context, id int64) (bool, error) {
	return u.c.exists(ctx, fmt.Sprintf("/users/%d/exists", id))
}

type Posts struct{ c *Client }

func NewPosts(baseURL string) *Posts { return &Posts{c: New(baseURL)} }

func (p *Posts) Exists(ctx context.Context, id int64) (bool, error) {
	return p.c.exists(ctx, fmt.Sprintf("/posts/%d/exists", id))
}

func (p *Posts) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return p.c.count(ctx, fmt.Sprintf("/posts/count?userId=%d", userID))
}

func (p *Posts) ListIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return p.c.listIDs(ctx, fmt.Sprintf("/posts/ids?userId=%d", userID))
}

func (p *Posts) Delete(ctx context.Context, id int64) error {
	return p.c.delete(ctx, fmt.Sprintf("/posts/%d", id))
}

type Comments struct{ c *Client }

func NewComments(baseURL string) *Comments { return &Comments{c: New(baseURL)} }

func (cc *Comments) Exists(ctx context.Context, id int64) (bool, error) {
	return cc.c.exists(ctx, fmt.Sprintf("/comments/%d/exists", id))
}

func (cc *Comments) CountByPost(ctx context.Context, postID int64) (int64, error) {
	return cc.c.count(ctx, fmt.Sprintf("/comments/count?postId=%d", postID))
}

func (cc *Comments) ListIDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	return cc.c.listIDs(ctx, fmt.Sprintf("/comments/ids?postId=%d", postID))
}

func (cc *Comments) Delete(ctx context.Context, id int64) error {
	return cc.c.delete(ctx, fmt.Sprintf("/comments/%d", id))
}

type Likes struct{ c *Client }

func NewLikes(baseURL string) *Likes { return &Likes{c: New(baseURL)} }

func (l *Likes) CountByPost(ctx context.Context, postID int64) (int64, error) {
	return l.c.count(ctx, fmt.Sprintf("/likes/count?postId=%d", postID))
}

func (l *Likes) CountByComment(ctx context.Context, commentID int64) (int64, error) {
	return l.c.count(ctx, fmt.Sprintf("/likes/count?commentId=%d", commentID))
}

func (l *Likes) ListIDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	return l.c.listIDs(ctx, fmt.Sprintf("/likes/ids?postId=%d", postID))
}

func (l *Likes) ListIDsByComment(ctx context.Context, commentID int64) ([]int64, error) {
	return l.c.listIDs(ctx, fmt.Sprintf("/likes/ids?commentId=%d", commentID))
}

func (l *Likes) Delete(ctx context.Context, id int64) error {
	return l.c.delete(ctx, fmt.Sprintf("/likes/%d", id))
}

type Subscriptions struct{ c *Client }

func NewSubscriptions(baseURL string) *Subscriptions { return &Subscriptions{c: New(baseURL)} }

func (s *Subscriptions) CountFollowers(ctx context.Context, targetID int64) (int64, error) {
	return s.c.count(ctx, fmt.Sprintf("/subscriptions/count?targetId=%d", targetID))
}

func (s *Subscriptions) ListIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return s.c.listIDs(ctx, fmt.Sprintf("/subscriptions/ids?userId=%d", userID))
}

// ListSubscriberIDs returns the ids of users following targetID; the media
// service fans notifications out to them.
func (s *Subscriptions) ListSubscriberIDs(ctx context.Context, targetID int64) ([]int64, error) {
	return s.c.listIDs(ctx, fmt.Sprintf("/subscriptions/subscribers?targetId=%d", targetID))
}

func (s *Subscriptions) Delete(ctx context.Context, id int64) error {
	return s.c.delete(ctx, fmt.Sprintf("/subscriptions/%d", id))
}

type Media struct{ c *Client }

func NewMedia(baseURL string) *Media { return &Media{c: New(baseURL)} }

func (m *Media) ListIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return m.c.listIDs(ctx, fmt.Sprintf("/media/ids?userId=%d", userID))
}

func (m *Media) Delete(ctx context.Context, id int64) error {
	return m.c.delete(ctx, fmt.Sprintf("/media/%d", id))
}
