// Package stats implements the statistics service: it follows every topic and
// keeps one (entity type, calendar date) counter row per lifecycle stream.
//
// The bus is at-least-once, so each envelope id is recorded in the inbox table
// inside the same transaction as the counter update; a redelivered event finds
// its id there and is skipped instead of double-counted.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"socialnet/internal/consumer"
	"socialnet/internal/domain/event"
	"socialnet/internal/domain/inbox"
	"socialnet/internal/domain/stats"
	"socialnet/internal/infrastructure/postgres"
	"socialnet/internal/infrastructure/redis"

	"socialnet/internal/apperr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	countersApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_counters_applied_total",
		Help: "The total number of counter upserts applied",
	}, []string{"entity", "action"})
	duplicatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stats_duplicate_events_skipped_total",
		Help: "The total number of redelivered events skipped by inbox dedupe",
	})
)

const (
	consumerName = "stats-service"
	cacheRegion  = "stats"
)

type action int

const (
	actionCreated action = iota
	actionDeleted
)

// rules maps an event type to the counter it moves. PostLike and CommentLike
// feed separate accumulators.
var rules = map[string]struct {
	entity stats.EntityType
	action action
}{
	"UserCreated":         {stats.EntityUser, actionCreated},
	"UserDeleted":         {stats.EntityUser, actionDeleted},
	"PostCreated":         {stats.EntityPost, actionCreated},
	"PostDeleted":         {stats.EntityPost, actionDeleted},
	"CommentCreated":      {stats.EntityComment, actionCreated},
	"CommentDeleted":      {stats.EntityComment, actionDeleted},
	"PostLikeCreated":     {stats.EntityPostLike, actionCreated},
	"PostLikeDeleted":     {stats.EntityPostLike, actionDeleted},
	"CommentLikeCreated":  {stats.EntityCommentLike, actionCreated},
	"CommentLikeDeleted":  {stats.EntityCommentLike, actionDeleted},
	"SubscriptionCreated": {stats.EntitySubscription, actionCreated},
	"SubscriptionDeleted": {stats.EntitySubscription, actionDeleted},
	"MediaUploaded":       {stats.EntityMedia, actionCreated},
	"MediaDeleted":        {stats.EntityMedia, actionDeleted},
}

type Service struct {
	repo  stats.Repository
	inbox inbox.Repository
	tx    postgres.Transactor
	cache *redis.Cache

	now func() time.Time
}

func New(repo stats.Repository, inboxRepo inbox.Repository, tx postgres.Transactor, cache *redis.Cache) *Service {
	return &Service{
		repo:  repo,
		inbox: inboxRepo,
		tx:    tx,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// RegisterHandlers wires every counted event type into the dispatcher.
func (s *Service) RegisterHandlers(d *consumer.Dispatcher) {
	for eventType := range rules {
		d.Handle(eventType, s.Apply)
	}
}

// Apply moves the counter for one envelope. The counter delta is a single
// atomic upsert statement, so concurrent handlers for different partitions
// cannot lose each other's updates; the inbox record in the same transaction
// absorbs redeliveries. Updates land on the row for the day the event
// occurred; a delete decrements that day's created counter even when the
// entity is older.
func (s *Service) Apply(ctx context.Context, env *event.Envelope) error {
	rule, ok := rules[env.Type]
	if !ok {
		return nil
	}

	day := stats.Day(env.OccurredAt)
	if env.OccurredAt.IsZero() {
		day = stats.Day(s.now())
	}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		fresh, err := s.inbox.SaveIfNotExists(txCtx, consumerName, env.ID, env.Type)
		if err != nil {
			return err
		}
		if !fresh {
			duplicatesSkipped.Inc()
			slog.Debug("duplicate event skipped", "event_id", env.ID, "type", env.Type)
			return nil
		}

		if rule.action == actionCreated {
			return s.repo.ApplyCreated(txCtx, rule.entity, day)
		}
		return s.repo.ApplyDeleted(txCtx, rule.entity, day)
	})
	if err != nil {
		// Storage trouble is worth a redelivery; the inbox insert rolled
		// back with it.
		return apperr.Retryable(fmt.Errorf("apply %s: %w", env.Type, err))
	}

	actionLabel := "created"
	if rule.action == actionDeleted {
		actionLabel = "deleted"
	}
	countersApplied.WithLabelValues(string(rule.entity), actionLabel).Inc()

	s.evict(ctx, day)

	return nil
}

// GetByDate returns every entity's counter row for the given date. Reads are
// cached; the eviction in Apply keeps the window of staleness to one consumed
// event, with the TTL as backstop.
func (s *Service) GetByDate(ctx context.Context, day time.Time) ([]*stats.Counter, error) {
	day = stats.Day(day)
	key := day.Format("2006-01-02")

	if s.cache != nil {
		var cached []*stats.Counter
		if hit, err := s.cache.Get(ctx, cacheRegion, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	counters, err := s.repo.GetByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheRegion, key, counters); err != nil {
			slog.Warn("cache counters", "date", key, "error", err)
		}
	}

	return counters, nil
}

// GetAll returns every counter row; order is unspecified.
func (s *Service) GetAll(ctx context.Context) ([]*stats.Counter, error) {
	return s.repo.GetAll(ctx)
}

// DeleteByDate is the administrative wipe of one date's rows.
func (s *Service) DeleteByDate(ctx context.Context, day time.Time) error {
	day = stats.Day(day)
	if err := s.repo.DeleteByDate(ctx, day); err != nil {
		return err
	}
	s.evict(ctx, day)
	return nil
}

func (s *Service) evict(ctx context.Context, day time.Time) {
	if s.cache == nil {
		return
	}
	key := day.Format("2006-01-02")
	if err := s.cache.Evict(ctx, cacheRegion, key); err != nil {
		slog.Warn("evict counters", "date", key, "error", err)
	}
}
