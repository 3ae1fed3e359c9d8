//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"film-catalog-service/internal/database"
	"film-catalog-service/internal/testinfra"
)

func newRedisCache(t *testing.T) *Cache {
	t.Helper()
	rdb, err := database.NewRedis(context.Background(), testinfra.StartRedis(t))
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, time.Minute, DefaultBreakerSettings())
}

func TestRedisCache(t *testing.T) {
	c := newRedisCache(t)
	ctx := context.Background()

	t.Run("hit after set", func(t *testing.T) {
		c.SetJSON(ctx, "film:detail:1", map[string]int{"id": 1}, c.Generation(ctx))

		var got map[string]int
		if !c.GetJSON(ctx, "film:detail:1", &got) || got["id"] != 1 {
			t.Errorf("GetJSON() = %v, want cached film 1", got)
		}
		if c.State() != "closed" {
			t.Errorf("State() = %q, want closed", c.State())
		}
	})

	t.Run("invalidate removes matching keys only", func(t *testing.T) {
		gen := c.Generation(ctx)
		c.SetJSON(ctx, "film:detail:2", 2, gen)
		c.SetJSON(ctx, "films:popular:10:all:all", []int{2}, gen)
		c.SetJSON(ctx, "other:key", "kept", gen)

		c.Invalidate(ctx, "film:*", "films:*")

		var n int
		if c.GetJSON(ctx, "film:detail:2", &n) {
			t.Error("film detail survived invalidation")
		}
		var list []int
		if c.GetJSON(ctx, "films:popular:10:all:all", &list) {
			t.Error("popular list survived invalidation")
		}
		var s string
		if !c.GetJSON(ctx, "other:key", &s) || s != "kept" {
			t.Errorf("unrelated key = %q, want kept", s)
		}
		if c.Generation(ctx) != gen+1 {
			t.Errorf("Generation() = %d, want %d", c.Generation(ctx), gen+1)
		}
	})

	t.Run("write computed before an invalidation is dropped", func(t *testing.T) {
		stale := c.Generation(ctx)
		c.Invalidate(ctx, "film:*")
		c.SetJSON(ctx, "film:detail:3", "stale", stale)

		var got string
		if c.GetJSON(ctx, "film:detail:3", &got) {
			t.Errorf("stale value %q was cached", got)
		}

		c.SetJSON(ctx, "film:detail:3", "fresh", c.Generation(ctx))
		if !c.GetJSON(ctx, "film:detail:3", &got) || got != "fresh" {
			t.Errorf("GetJSON() = %q, want fresh", got)
		}
	})

	t.Run("entries expire", func(t *testing.T) {
		short := New(c.rdb, time.Second, DefaultBreakerSettings())
		short.SetJSON(ctx, "film:detail:4", 4, short.Generation(ctx))
		ttl, err := c.rdb.TTL(ctx, "film:detail:4").Result()
		if err != nil || ttl <= 0 || ttl > time.Second {
			t.Errorf("TTL = %v, %v; want within 1s", ttl, err)
		}
	})
}
