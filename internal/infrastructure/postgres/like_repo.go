package postgres

import (
	"context"
	"errors"
	"fmt"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/like"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LikeRepository struct {
	pool *pgxpool.Pool
}

func NewLikeRepository(pool *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{pool: pool}
}

func (r *LikeRepository) Create(ctx context.Context, l *like.Like) error {
	const sql = `
		INSERT INTO likes (user_id, post_id, comment_id, created_at)
		VALUES ($1, NULLIF($2, 0), NULLIF($3, 0), $4)
		RETURNING id
	`

	err := pick(ctx, r.pool).QueryRow(ctx, sql,
		l.UserID, l.PostID, l.CommentID, l.CreatedAt).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert like: %w", err)
	}

	return nil
}

func (r *LikeRepository) GetByID(ctx context.Context, id int64) (*like.Like, error) {
	const sql = `
		SELECT id, user_id, COALESCE(post_id, 0), COALESCE(comment_id, 0), created_at
		FROM likes
		WHERE id = $1
	`

	var l like.Like
	err := pick(ctx, r.pool).QueryRow(ctx, sql, id).Scan(
		&l.ID, &l.UserID, &l.PostID, &l.CommentID, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("like %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get like by id: %w", err)
	}

	return &l, nil
}

func (r *LikeRepository) ListIDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	return listIDs(ctx, pick(ctx, r.pool), `SELECT id FROM likes WHERE post_id = $1 ORDER BY id`, postID)
}

func (r *LikeRepository) ListIDsByComment(ctx context.Context, commentID int64) ([]int64, error) {
	return listIDs(ctx, pick(ctx, r.pool), `SELECT id FROM likes WHERE comment_id = $1 ORDER BY id`, commentID)
}

func (r *LikeRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := pick(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count likes by post: %w", err)
	}
	return n, nil
}

func (r *LikeRepository) CountByComment(ctx context.Context, commentID int64) (int64, error) {
	var n int64
	err := pick(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE comment_id = $1`, commentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count likes by comment: %w", err)
	}
	return n, nil
}

func (r *LikeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := pick(ctx, r.pool).Exec(ctx, `DELETE FROM likes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("like %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}
