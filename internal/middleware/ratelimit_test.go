package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
)

func TestLocalFallbackLimits(t *testing.T) {
	app := fiber.New()
	app.Use(NewRateLimiter(nil, 3, 60).Handler())
	app.Get("/", func(c fiber.Ctx) error { return c.SendString("ok") })

	var codes []int
	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	want := []int{200, 200, 200, 429, 429}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("status codes = %v, want %v", codes, want)
		}
	}
}

func TestRateLimitHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(NewRateLimiter(nil, 10, 60).Handler())
	app.Get("/", func(c fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-RateLimit-Limit"); got != "10" {
		t.Errorf("X-RateLimit-Limit = %q", got)
	}
	if got := resp.Header.Get("X-RateLimit-Remaining"); got != "9" {
		t.Errorf("X-RateLimit-Remaining = %q", got)
	}
}

func TestLocalBucketsAreSwept(t *testing.T) {
	rl := NewRateLimiter(nil, 2, 60)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	for i := 0; i < 100; i++ {
		rl.allowLocal(fmt.Sprintf("10.0.0.%d", i))
	}
	if len(rl.local) != 100 {
		t.Fatalf("buckets = %d, want 100", len(rl.local))
	}

	clock = clock.Add(30 * time.Second)
	rl.allowLocal("10.0.0.1")
	clock = clock.Add(31 * time.Second)
	rl.allowLocal("10.0.1.1")

	if len(rl.local) != 2 {
		t.Errorf("buckets after a window = %d, want 2", len(rl.local))
	}
	if _, ok := rl.local["10.0.0.1"]; !ok {
		t.Error("recently used bucket was swept")
	}
}

func TestSweptBucketStartsFull(t *testing.T) {
	rl := NewRateLimiter(nil, 1, 60)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	if ok, _, _ := rl.allowLocal("a"); !ok {
		t.Fatal("first request denied")
	}
	if ok, _, _ := rl.allowLocal("a"); ok {
		t.Fatal("second request within the window allowed")
	}
	clock = clock.Add(time.Minute)
	if ok, _, _ := rl.allowLocal("a"); !ok {
		t.Error("request after a full window denied")
	}
}
