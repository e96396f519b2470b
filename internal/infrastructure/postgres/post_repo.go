package postgres

import (
	"context"
	"errors"
	"fmt"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/post"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, p *post.Post) error {
	const sql = `
		INSERT INTO posts (user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := pick(ctx, r.pool).QueryRow(ctx, sql, p.UserID, p.Content, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*post.Post, error) {
	const sql = `
		SELECT id, user_id, content, created_at, updated_at
		FROM posts
		WHERE id = $1
	`

	var p post.Post
	err := pick(ctx, r.pool).QueryRow(ctx, sql, id).Scan(
		&p.ID, &p.UserID, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("post %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post by id: %w", err)
	}

	return &p, nil
}

func (r *PostRepository) ListByUser(ctx context.Context, userID int64) ([]*post.Post, error) {
	const sql = `
		SELECT id, user_id, content, created_at, updated_at
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := pick(ctx, r.pool).Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("list posts by user: %w", err)
	}
	defer rows.Close()

	var posts []*post.Post
	for rows.Next() {
		p := &post.Post{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

func (r *PostRepository) ListIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return listIDs(ctx, pick(ctx, r.pool), `SELECT id FROM posts WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *PostRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := pick(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts by user: %w", err)
	}
	return n, nil
}

func (r *PostRepository) Update(ctx context.Context, p *post.Post) error {
	const sql = `
		UPDATE posts
		SET content = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := pick(ctx, r.pool).Exec(ctx, sql, p.ID, p.Content)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("post %d: %w", p.ID, apperr.ErrNotFound)
	}

	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	tag, err := pick(ctx, r.pool).Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("post %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}

// listIDs runs a single-column id query; shared by the cascade list endpoints.
func listIDs(ctx context.Context, ex executor, sql string, args ...any) ([]int64, error) {
	rows, err := ex.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
