package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, ttl), mr
}

func TestCacheSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	want := profile{ID: 7, Name: "alice", Count: 3}
	if err := c.Set(ctx, "users", "7", want); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got profile
	hit, err := c.Get(ctx, "users", "7", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !hit {
		t.Fatal("want a hit")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCacheMissIsNotAnError(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	var got profile
	hit, err := c.Get(context.Background(), "users", "404", &got)
	if err != nil {
		t.Fatalf("miss must not error: %v", err)
	}
	if hit {
		t.Fatal("want a miss")
	}
}

func TestCacheRegionsAreDisjoint(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "users", "7", profile{ID: 7}); err != nil {
		t.Fatal(err)
	}

	var got profile
	hit, err := c.Get(ctx, "posts", "7", &got)
	if err != nil || hit {
		t.Fatalf("same key in another region: hit=%v err=%v", hit, err)
	}
}

func TestCacheEvict(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "users", "7", profile{ID: 7}); err != nil {
		t.Fatal(err)
	}
	if err := c.Evict(ctx, "users", "7"); err != nil {
		t.Fatalf("evict: %v", err)
	}

	var got profile
	hit, _ := c.Get(ctx, "users", "7", &got)
	if hit {
		t.Fatal("entry must be gone after evict")
	}
}

func TestCacheEvictMissingKeyIsFine(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	if err := c.Evict(context.Background(), "users", "404"); err != nil {
		t.Fatalf("evicting a missing key: %v", err)
	}
}

// TTL is the backstop against entries whose eviction was missed.
func TestCacheEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t, DefaultTTL)
	ctx := context.Background()

	if err := c.Set(ctx, "stats", "2024-05-20", profile{Count: 12}); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(DefaultTTL - time.Second)
	var got profile
	if hit, _ := c.Get(ctx, "stats", "2024-05-20", &got); !hit {
		t.Fatal("entry expired before its TTL")
	}

	mr.FastForward(2 * time.Second)
	if hit, _ := c.Get(ctx, "stats", "2024-05-20", &got); hit {
		t.Fatal("entry survived past its TTL")
	}
}
