package postgres

import (
	"context"
	"errors"
	"fmt"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/media"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MediaRepository struct {
	pool *pgxpool.Pool
}

func NewMediaRepository(pool *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{pool: pool}
}

func (r *MediaRepository) Create(ctx context.Context, m *media.Media) error {
	const sql = `
		INSERT INTO media (user_id, url, mime_type, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := pick(ctx, r.pool).QueryRow(ctx, sql,
		m.UserID, m.URL, nullIfEmpty(m.MimeType), m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}

	return nil
}

func (r *MediaRepository) GetByID(ctx context.Context, id int64) (*media.Media, error) {
	const sql = `
		SELECT id, user_id, url, COALESCE(mime_type, ''), created_at
		FROM media
		WHERE id = $1
	`

	var m media.Media
	err := pick(ctx, r.pool).QueryRow(ctx, sql, id).Scan(
		&m.ID, &m.UserID, &m.URL, &m.MimeType, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("media %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get media by id: %w", err)
	}

	return &m, nil
}

func (r *MediaRepository) ListByUser(ctx context.Context, userID int64) ([]*media.Media, error) {
	const sql = `
		SELECT id, user_id, url, COALESCE(mime_type, ''), created_at
		FROM media
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := pick(ctx, r.pool).Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("list media by user: %w", err)
	}
	defer rows.Close()

	var items []*media.Media
	for rows.Next() {
		m := &media.Media{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.URL, &m.MimeType, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, m)
	}

	return items, rows.Err()
}

func (r *MediaRepository) ListIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	return listIDs(ctx, pick(ctx, r.pool), `SELECT id FROM media WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *MediaRepository) Delete(ctx context.Context, id int64) error {
	tag, err := pick(ctx, r.pool).Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("media %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *media.Notification) error {
	const sql = `
		INSERT INTO notifications (user_id, owner_id, media_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := pick(ctx, r.pool).QueryRow(ctx, sql,
		n.UserID, n.OwnerID, n.MediaID, n.Message, n.CreatedAt).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64) ([]*media.Notification, error) {
	const sql = `
		SELECT id, user_id, owner_id, media_id, message, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := pick(ctx, r.pool).Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications by user: %w", err)
	}
	defer rows.Close()

	var items []*media.Notification
	for rows.Next() {
		n := &media.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.OwnerID, &n.MediaID, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, n)
	}

	return items, rows.Err()
}
