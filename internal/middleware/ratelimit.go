package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

var errNoCounter = errors.New("no shared rate limit counter")

// RateLimiter limits requests per client IP. With Redis it counts a fixed
// window shared by every replica; without Redis, or while Redis is failing,
// each process falls back to its own token bucket per IP.
type RateLimiter struct {
	rdb     *redis.Client
	maxReqs int
	window  time.Duration
	now     func() time.Time

	mu        sync.Mutex
	local     map[string]*localBucket
	lastSweep time.Time
}

// localBucket is an IP's fallback limiter. A bucket idle for a whole window
// has refilled completely, so it can be dropped and recreated on demand.
type localBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter. rdb may be nil.
func NewRateLimiter(rdb *redis.Client, maxReqs, windowSec int) *RateLimiter {
	if maxReqs < 1 {
		maxReqs = 1
	}
	if windowSec < 1 {
		windowSec = 1
	}
	return &RateLimiter{
		rdb:     rdb,
		maxReqs: maxReqs,
		window:  time.Duration(windowSec) * time.Second,
		now:     time.Now,
		local:   make(map[string]*localBucket),
	}
}

// Handler returns a Fiber middleware handler for rate limiting.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		ip := c.IP()

		allowed, remaining, reset, err := rl.allowRedis(c.Context(), ip)
		if err != nil {
			allowed, remaining, reset = rl.allowLocal(ip)
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.maxReqs))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.Itoa(int(reset.Seconds())))

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"retry_after": int(reset.Seconds()),
			})
		}
		return c.Next()
	}
}

func (rl *RateLimiter) allowRedis(ctx context.Context, ip string) (bool, int, time.Duration, error) {
	if rl.rdb == nil {
		return false, 0, 0, errNoCounter
	}
	key := fmt.Sprintf("ratelimit:%s", ip)

	// INCR and EXPIRE NX run as one transaction, so a counter never outlives
	// its window even if the first request's expiry was lost.
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := rl.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rl.window)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		slog.Debug("rate limit counter unavailable, using local limiter", "error", err)
		return false, 0, 0, err
	}
	count := incr.Val()
	reset := ttl.Val()
	if reset < 0 {
		reset = rl.window
	}

	remaining := max(0, rl.maxReqs-int(count))
	return int(count) <= rl.maxReqs, remaining, reset, nil
}

func (rl *RateLimiter) allowLocal(ip string) (bool, int, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	rl.sweepLocked(now)
	b, ok := rl.local[ip]
	if !ok {
		every := rate.Every(rl.window / time.Duration(rl.maxReqs))
		b = &localBucket{lim: rate.NewLimiter(every, rl.maxReqs)}
		rl.local[ip] = b
	}
	b.lastSeen = now
	lim := b.lim
	rl.mu.Unlock()

	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	remaining := max(0, int(lim.TokensAt(now)))
	return true, remaining, 0
}

// sweepLocked drops buckets idle for at least a window, at most once per window.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	rl.lastSweep = now
	for ip, b := range rl.local {
		if now.Sub(b.lastSeen) >= rl.window {
			delete(rl.local, ip)
		}
	}
}
