package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNilCacheIsNoop(t *testing.T) {
	ctx := context.Background()

	for _, c := range []*Cache{nil, New(nil, time.Minute, DefaultBreakerSettings())} {
		var dst map[string]int
		if c.GetJSON(ctx, "k", &dst) {
			t.Error("GetJSON on disabled cache reported a hit")
		}
		c.SetJSON(ctx, "k", map[string]int{"a": 1}, c.Generation(ctx))
		c.Invalidate(ctx, "k*")
		if got := c.State(); got != "disabled" {
			t.Errorf("State() = %q, want disabled", got)
		}
	}
}

func TestBreakerOpensOnUnreachableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c := New(rdb, time.Minute, BreakerSettings{FailureThreshold: 2, OpenTimeout: time.Minute})
	ctx := context.Background()

	var dst string
	for i := 0; i < 3; i++ {
		if c.GetJSON(ctx, "film:detail:1", &dst) {
			t.Fatal("unexpected hit against unreachable redis")
		}
	}
	if got := c.State(); got != "open" {
		t.Errorf("State() = %q, want open", got)
	}
}
