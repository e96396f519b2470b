package postgres

import (
	"context"
	"errors"
	"fmt"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/comment"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func (r *CommentRepository) Create(ctx context.Context, c *comment.Comment) error {
	const sql = `
		INSERT INTO comments (post_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := pick(ctx, r.pool).QueryRow(ctx, sql,
		c.PostID, c.UserID, c.Content, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*comment.Comment, error) {
	const sql = `
		SELECT id, post_id, user_id, content, created_at, updated_at
		FROM comments
		WHERE id = $1
	`

	var c comment.Comment
	err := pick(ctx, r.pool).QueryRow(ctx, sql, id).Scan(
		&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("comment %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment by id: %w", err)
	}

	return &c, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*comment.Comment, error) {
	const sql = `
		SELECT id, post_id, user_id, content, created_at, updated_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`

	rows, err := pick(ctx, r.pool).Query(ctx, sql, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments by post: %w", err)
	}
	defer rows.Close()

	var comments []*comment.Comment
	for rows.Next() {
		c := &comment.Comment{}
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

func (r *CommentRepository) ListIDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	return listIDs(ctx, pick(ctx, r.pool), `SELECT id FROM comments WHERE post_id = $1 ORDER BY id`, postID)
}

func (r *CommentRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := pick(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count comments by post: %w", err)
	}
	return n, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := pick(ctx, r.pool).Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comment %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}
