package database

import (
	"context"
	"testing"
	"time"

	"film-catalog-service/internal/config"
)

func TestRedisOptions(t *testing.T) {
	cfg := config.RedisConfig{
		Addr:        "cache:6379",
		Password:    "secret",
		DB:          2,
		PoolSize:    16,
		DialTimeout: 2 * time.Second,
		IOTimeout:   500 * time.Millisecond,
	}
	opts := redisOptions(cfg)
	if opts.Addr != cfg.Addr || opts.Password != cfg.Password || opts.DB != 2 {
		t.Errorf("connection options = %s %q %d", opts.Addr, opts.Password, opts.DB)
	}
	if opts.PoolSize != 16 {
		t.Errorf("PoolSize = %d, want 16", opts.PoolSize)
	}
	if opts.DialTimeout != 2*time.Second || opts.ReadTimeout != 500*time.Millisecond || opts.WriteTimeout != 500*time.Millisecond {
		t.Errorf("timeouts = %v/%v/%v", opts.DialTimeout, opts.ReadTimeout, opts.WriteTimeout)
	}
	if opts.PoolTimeout != 2500*time.Millisecond {
		t.Errorf("PoolTimeout = %v, want 2.5s", opts.PoolTimeout)
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	cfg := config.RedisConfig{
		Addr:        "127.0.0.1:1",
		PoolSize:    1,
		DialTimeout: 100 * time.Millisecond,
		IOTimeout:   100 * time.Millisecond,
	}
	start := time.Now()
	if _, err := NewRedis(context.Background(), cfg); err == nil {
		t.Fatal("NewRedis() against a closed port: expected error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("NewRedis() took %v, want it bounded by the configured timeouts", elapsed)
	}
}
