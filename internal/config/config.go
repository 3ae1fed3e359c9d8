package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Recommendation strategies.
const (
	StrategyLargestSet = "largest-set"
	StrategyTopCoLiker = "top-co-liker"
)

// Config holds all configuration for the film catalog service.
type Config struct {
	DB                     DBConfig
	Redis                  RedisConfig
	Cache                  CacheConfig
	Port                   string
	StorageBackend         string
	RecommendationStrategy string
	RateLimitMax           int
	RateLimitWindowSeconds int
	LogLevel               slog.Level
}

// DBConfig holds PostgreSQL configuration.
type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
	IOTimeout   time.Duration
}

// CacheConfig controls the Redis read-through cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dbPort, err := envInt("DB_PORT", 5432, 1)
	if err != nil {
		return nil, err
	}
	redisDB, err := envInt("REDIS_DB", 0, 0)
	if err != nil {
		return nil, err
	}
	redisPool, err := envInt("REDIS_POOL_SIZE", 10, 1)
	if err != nil {
		return nil, err
	}
	redisDial, err := envInt("REDIS_DIAL_TIMEOUT_SECONDS", 5, 1)
	if err != nil {
		return nil, err
	}
	redisIO, err := envInt("REDIS_IO_TIMEOUT_SECONDS", 3, 1)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := envInt("CACHE_TTL_SECONDS", 300, 1)
	if err != nil {
		return nil, err
	}
	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("CACHE_ENABLED: %w", err)
	}
	rateLimitMax, err := envInt("RATE_LIMIT_MAX", 100, 1)
	if err != nil {
		return nil, err
	}
	rateLimitWindow, err := envInt("RATE_LIMIT_WINDOW_SECONDS", 60, 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "film_catalog"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          redisDB,
			PoolSize:    redisPool,
			DialTimeout: time.Duration(redisDial) * time.Second,
			IOTimeout:   time.Duration(redisIO) * time.Second,
		},
		Cache: CacheConfig{
			Enabled: cacheEnabled,
			TTL:     time.Duration(cacheTTL) * time.Second,
		},
		Port:                   getEnv("SERVER_PORT", "8080"),
		StorageBackend:         strings.ToLower(getEnv("STORAGE_BACKEND", BackendPostgres)),
		RecommendationStrategy: strings.ToLower(getEnv("RECOMMENDATION_STRATEGY", StrategyLargestSet)),
		RateLimitMax:           rateLimitMax,
		RateLimitWindowSeconds: rateLimitWindow,
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	switch cfg.StorageBackend {
	case BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	switch cfg.RecommendationStrategy {
	case StrategyLargestSet, StrategyTopCoLiker:
	default:
		return nil, fmt.Errorf("unknown RECOMMENDATION_STRATEGY %q", cfg.RecommendationStrategy)
	}

	return cfg, nil
}

// envInt parses an integer variable and rejects values below floor.
func envInt(key string, fallback, floor int) (int, error) {
	raw := getEnv(key, strconv.Itoa(fallback))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if v < floor {
		return 0, fmt.Errorf("%s must be at least %d, got %d", key, floor, v)
	}
	return v, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
