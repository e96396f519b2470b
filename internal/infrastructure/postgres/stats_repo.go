package postgres

import (
	"context"
	"fmt"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/stats"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// ApplyCreated bumps the created counter for (entity, day) in one statement, so
// concurrent handlers cannot lose updates to the same row.
func (r *StatsRepository) ApplyCreated(ctx context.Context, entity stats.EntityType, day time.Time) error {
	const sql = `
		INSERT INTO stats_counters (entity_type, day, created_count, deleted_count)
		VALUES ($1, $2, 1, 0)
		ON CONFLICT (entity_type, day)
		DO UPDATE SET created_count = stats_counters.created_count + 1
	`

	if _, err := pick(ctx, r.pool).Exec(ctx, sql, string(entity), day); err != nil {
		return fmt.Errorf("apply created counter: %w", err)
	}

	return nil
}

// ApplyDeleted bumps the deleted counter and takes one back from the same
// day's created counter. The decrement applies to today's row regardless of
// when the entity was created, which can drive created_count negative.
func (r *StatsRepository) ApplyDeleted(ctx context.Context, entity stats.EntityType, day time.Time) error {
	const sql = `
		INSERT INTO stats_counters (entity_type, day, created_count, deleted_count)
		VALUES ($1, $2, 0, 1)
		ON CONFLICT (entity_type, day)
		DO UPDATE SET created_count = stats_counters.created_count - 1,
		              deleted_count = stats_counters.deleted_count + 1
	`

	if _, err := pick(ctx, r.pool).Exec(ctx, sql, string(entity), day); err != nil {
		return fmt.Errorf("apply deleted counter: %w", err)
	}

	return nil
}

func (r *StatsRepository) GetByDate(ctx context.Context, day time.Time) ([]*stats.Counter, error) {
	const sql = `
		SELECT entity_type, day, created_count, deleted_count
		FROM stats_counters
		WHERE day = $1
	`

	counters, err := r.query(ctx, sql, day)
	if err != nil {
		return nil, err
	}
	if len(counters) == 0 {
		return nil, fmt.Errorf("counters for %s: %w", day.Format("2006-01-02"), apperr.ErrNotFound)
	}

	return counters, nil
}

func (r *StatsRepository) GetAll(ctx context.Context) ([]*stats.Counter, error) {
	const sql = `
		SELECT entity_type, day, created_count, deleted_count
		FROM stats_counters
	`

	return r.query(ctx, sql)
}

func (r *StatsRepository) DeleteByDate(ctx context.Context, day time.Time) error {
	tag, err := pick(ctx, r.pool).Exec(ctx, `DELETE FROM stats_counters WHERE day = $1`, day)
	if err != nil {
		return fmt.Errorf("delete counters by date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("counters for %s: %w", day.Format("2006-01-02"), apperr.ErrNotFound)
	}

	return nil
}

func (r *StatsRepository) query(ctx context.Context, sql string, args ...any) ([]*stats.Counter, error) {
	rows, err := pick(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query counters: %w", err)
	}
	defer rows.Close()

	var counters []*stats.Counter
	for rows.Next() {
		c := &stats.Counter{}
		var entity string
		if err := rows.Scan(&entity, &c.Day, &c.CreatedCount, &c.DeletedCount); err != nil {
			return nil, fmt.Errorf("scan counter: %w", err)
		}
		c.Entity = stats.EntityType(entity)
		counters = append(counters, c)
	}

	return counters, rows.Err()
}
