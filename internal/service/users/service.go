// Package users implements the users service: profile CRUD, the top of the
// cascade graph (posts, subscriptions, media all hang off a user), and the
// cached profile view.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"socialnet/internal/apperr"
	"socialnet/internal/domain/event"
	"socialnet/internal/domain/user"
	"socialnet/internal/infrastructure/postgres"
	"socialnet/internal/infrastructure/redis"
	"socialnet/internal/producer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cascadeFanout = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "users_cascade_deleted_children",
	Help:    "Number of child entities deleted per user cascade",
	Buckets: []float64{0, 1, 5, 10, 50, 100, 500},
})

const cacheRegion = "users"

// PostCascade is the slice of the posts service the user cascade needs; each
// post delete cascades its own comments and likes remotely.
type PostCascade interface {
	ListIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type SubscriptionCascade interface {
	ListIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	CountFollowers(ctx context.Context, targetID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type MediaCascade interface {
	ListIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo    user.Repository
	tx      postgres.Transactor
	emitter producer.EventEmitter
	cache   *redis.Cache
	posts   PostCascade
	subs    SubscriptionCascade
	media   MediaCascade
}

func New(
	repo user.Repository,
	tx postgres.Transactor,
	emitter producer.EventEmitter,
	cache *redis.Cache,
	posts PostCascade,
	subs SubscriptionCascade,
	media MediaCascade,
) *Service {
	return &Service{
		repo:    repo,
		tx:      tx,
		emitter: emitter,
		cache:   cache,
		posts:   posts,
		subs:    subs,
		media:   media,
	}
}

type CreateParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*user.User, error) {
	if strings.TrimSpace(params.Username) == "" || strings.TrimSpace(params.Email) == "" {
		return nil, fmt.Errorf("username and email are required: %w", apperr.ErrValidationFailed)
	}

	now := time.Now().UTC()
	u := &user.User{
		Username:  params.Username,
		Email:     params.Email,
		Bio:       params.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, u); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, event.UserCreated{UserSnapshot: snapshot(u)})
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.emitter.EmitCommitted(ctx, event.UserCreated{UserSnapshot: snapshot(u)})

	return u, nil
}

// Profile is the cached read shape. The counts come from the posts and
// subscriptions services and degrade to zero when those are down; a profile
// read never fails because a counter dependency did.
type Profile struct {
	user.User
	PostsCount     int64 `json:"postsCount"`
	FollowersCount int64 `json:"followersCount"`
}

func (s *Service) Get(ctx context.Context, id int64) (*Profile, error) {
	key := strconv.FormatInt(id, 10)

	if s.cache != nil {
		var cached Profile
		if hit, err := s.cache.Get(ctx, cacheRegion, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &Profile{User: *u}
	if n, err := s.posts.CountByUser(ctx, id); err != nil {
		slog.Warn("posts count degraded to zero", "user_id", id, "error", err)
	} else {
		p.PostsCount = n
	}
	if n, err := s.subs.CountFollowers(ctx, id); err != nil {
		slog.Warn("followers count degraded to zero", "user_id", id, "error", err)
	} else {
		p.FollowersCount = n
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheRegion, key, p); err != nil {
			slog.Warn("cache profile", "user_id", id, "error", err)
		}
	}

	return p, nil
}

type UpdateParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
}

func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Username != "" {
		u.Username = params.Username
	}
	if params.Email != "" {
		u.Email = params.Email
	}
	if params.Bio != "" {
		u.Bio = params.Bio
	}
	u.UpdatedAt = time.Now().UTC()

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, u); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, event.UserUpdated{UserSnapshot: snapshot(u)})
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.emitter.EmitCommitted(ctx, event.UserUpdated{UserSnapshot: snapshot(u)})
	s.Evict(ctx, id)

	return u, nil
}

// Delete walks the user's dependents as a worklist — posts (each cascading its
// own comments and likes in the posts service), subscriptions on either side,
// media — then deletes the user. A failing child aborts the cascade with the
// user intact; children already deleted stay deleted and their events stand.
func (s *Service) Delete(ctx context.Context, id int64) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	postIDs, err := s.posts.ListIDsByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("list posts of user %d: %w", id, err)
	}
	subIDs, err := s.subs.ListIDsByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("list subscriptions of user %d: %w", id, err)
	}
	mediaIDs, err := s.media.ListIDsByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("list media of user %d: %w", id, err)
	}

	deleted := 0
	for _, pid := range postIDs {
		if err := s.posts.Delete(ctx, pid); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("cascade delete post %d: %w", pid, err)
		}
		deleted++
	}
	for _, sid := range subIDs {
		if err := s.subs.Delete(ctx, sid); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("cascade delete subscription %d: %w", sid, err)
		}
		deleted++
	}
	for _, mid := range mediaIDs {
		if err := s.media.Delete(ctx, mid); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("cascade delete media %d: %w", mid, err)
		}
		deleted++
	}
	cascadeFanout.Observe(float64(deleted))

	payload := event.UserDeleted{UserSnapshot: snapshot(u)}
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return s.emitter.EmitPending(txCtx, payload)
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.emitter.EmitCommitted(ctx, payload)
	s.Evict(ctx, id)

	return nil
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Evict drops the cached profile; also called by the event handlers when a
// post or subscription affecting the counters changes.
func (s *Service) Evict(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Evict(ctx, cacheRegion, strconv.FormatInt(id, 10)); err != nil {
		slog.Warn("evict profile", "user_id", id, "error", err)
	}
}

func snapshot(u *user.User) event.UserSnapshot {
	return event.UserSnapshot{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
