// Package cache is a JSON read-through cache on Redis. A nil *Cache, a nil
// client, or an open circuit breaker all degrade to "always miss".
//
// Writes are fenced by a generation counter: callers read Generation before
// loading from the store and pass it to SetJSON, which skips the write when an
// Invalidate ran in between.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"film-catalog-service/internal/metrics"
)

const generationKey = "cache:generation"

// errStale marks a write dropped because the generation moved on.
var errStale = errors.New("cache generation changed")

// BreakerSettings configures the breaker guarding Redis calls.
type BreakerSettings struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultBreakerSettings trips after five consecutive failures and retries after 30s.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{FailureThreshold: 5, OpenTimeout: 30 * time.Second}
}

// Cache stores JSON values under string keys with a fixed TTL.
type Cache struct {
	rdb     *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[string]
}

// New wraps rdb. rdb may be nil, in which case every call is a no-op.
func New(rdb *redis.Client, ttl time.Duration, bs BreakerSettings) *Cache {
	settings := gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Timeout:     bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil) ||
				errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("cache breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			if to == gobreaker.StateOpen {
				metrics.CacheBreakerState.Set(1)
			} else {
				metrics.CacheBreakerState.Set(0)
			}
		},
	}
	return &Cache{
		rdb:     rdb,
		ttl:     ttl,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil
}

// State reports the breaker state, "disabled" when there is no client.
func (c *Cache) State() string {
	if !c.enabled() {
		return "disabled"
	}
	return c.breaker.State().String()
}

// GetJSON decodes the cached value into dst and reports whether it was a hit.
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	if !c.enabled() {
		return false
	}
	raw, err := c.breaker.Execute(func() (string, error) {
		return c.rdb.Get(ctx, key).Result()
	})
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Debug("cache get failed", "key", key, "error", err)
		}
		metrics.CacheMisses.Inc()
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.Warn("cache entry is not valid JSON", "key", key, "error", err)
		metrics.CacheMisses.Inc()
		return false
	}
	slog.Debug("cache hit", "key", key)
	metrics.CacheHits.Inc()
	return true
}

// Generation returns the current invalidation generation, or -1 when it
// cannot be read. A -1 generation makes the matching SetJSON a no-op.
func (c *Cache) Generation(ctx context.Context) int64 {
	if !c.enabled() {
		return -1
	}
	raw, err := c.breaker.Execute(func() (string, error) {
		return c.rdb.Get(ctx, generationKey).Result()
	})
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		slog.Debug("cache generation unavailable", "error", err)
		return -1
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("cache generation is not an integer", "value", raw)
		return -1
	}
	return gen
}

// SetJSON stores v under key if no Invalidate has happened since gen was read.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, gen int64) {
	if !c.enabled() || gen < 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode cache value", "key", key, "error", err)
		return
	}
	_, err = c.breaker.Execute(func() (string, error) {
		return "", c.rdb.Watch(ctx, func(tx *redis.Tx) error {
			cur, err := tx.Get(ctx, generationKey).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if cur != gen {
				return errStale
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, c.ttl)
				return nil
			})
			return err
		}, generationKey)
	})
	switch {
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		slog.Debug("cache write skipped after invalidation", "key", key)
	case err != nil:
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}

// Invalidate bumps the generation, then deletes every key matching any of
// the glob patterns.
func (c *Cache) Invalidate(ctx context.Context, patterns ...string) {
	if !c.enabled() {
		return
	}
	_, err := c.breaker.Execute(func() (string, error) {
		return "", c.rdb.Incr(ctx, generationKey).Err()
	})
	if err != nil {
		slog.Error("failed to bump cache generation", "error", err)
	}
	for _, pattern := range patterns {
		_, err := c.breaker.Execute(func() (string, error) {
			iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
			for iter.Next(ctx) {
				if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
					return "", err
				}
			}
			return "", iter.Err()
		})
		if err != nil {
			slog.Error("failed to invalidate cache", "pattern", pattern, "error", err)
		}
	}
}
