//go:build integration

// Package testinfra starts throwaway PostgreSQL and Redis containers for
// integration tests. Tests using it are built only with -tags integration and
// skip when no Docker daemon is reachable.
package testinfra

import (
	"context"
	"net"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"film-catalog-service/internal/config"
)

const (
	PostgresImage = "postgres:16-alpine"
	RedisImage    = "redis:7-alpine"

	startTimeout = 90 * time.Second
)

// SkipIfNoDocker skips the test when the Docker daemon is not reachable.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// StartPostgres runs an empty PostgreSQL and returns settings pointing at it.
// The container is terminated when the test finishes.
func StartPostgres(t *testing.T) config.DBConfig {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "catalog",
			"POSTGRES_PASSWORD": "catalog",
			"POSTGRES_DB":       "film_catalog_test",
		},
		// The server logs readiness twice: once for the init run, once for real.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(startTimeout),
	}
	container := start(t, ctx, req)

	host := containerHost(t, ctx, container)
	mapped, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("postgres mapped port: %v", err)
	}
	return config.DBConfig{
		Host:     host,
		Port:     mapped.Int(),
		User:     "catalog",
		Password: "catalog",
		DBName:   "film_catalog_test",
		SSLMode:  "disable",
	}
}

// StartRedis runs an empty Redis and returns settings pointing at it.
func StartRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        RedisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections"),
			wait.ForListeningPort("6379/tcp"),
		).WithStartupTimeout(startTimeout),
	}
	container := start(t, ctx, req)

	host := containerHost(t, ctx, container)
	mapped, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis mapped port: %v", err)
	}
	return config.RedisConfig{
		Addr:        net.JoinHostPort(host, mapped.Port()),
		PoolSize:    4,
		DialTimeout: 5 * time.Second,
		IOTimeout:   3 * time.Second,
	}
}

func start(t *testing.T, ctx context.Context, req testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s container: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate %s container: %v", req.Image, err)
		}
	})
	return container
}

func containerHost(t *testing.T, ctx context.Context, c testcontainers.Container) string {
	t.Helper()

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	return host
}
