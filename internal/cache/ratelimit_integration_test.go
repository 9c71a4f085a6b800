//go:build integration

package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/meetlog/meetlog/internal/testutil"
)

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	return ctx, c
}

func uniqueClientID(prefix string) string {
	return prefix + "-" + strings.ToLower(ulid.Make().String())
}

func TestIntegrationRateLimit_BurstThenReject(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	clientID := uniqueClientID("burst")
	const burst = 5

	for i := 0; i < burst; i++ {
		result, err := c.CheckRateLimit(ctx, clientID, 1, burst)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !result.Allowed {
			t.Fatalf("request %d rejected within burst", i)
		}
	}

	result, err := c.CheckRateLimit(ctx, clientID, 1, burst)
	if err != nil {
		t.Fatalf("check after burst: %v", err)
	}
	if result.Allowed {
		t.Error("expected rejection after burst exhausted")
	}
	if result.RetryAfter <= 0 {
		t.Errorf("retry after = %s, want > 0", result.RetryAfter)
	}
}

func TestIntegrationRateLimit_ClientsIsolated(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	exhausted := uniqueClientID("exhausted")
	const burst = 3

	for i := 0; i < burst+1; i++ {
		if _, err := c.CheckRateLimit(ctx, exhausted, 1, burst); err != nil {
			t.Fatalf("check: %v", err)
		}
	}

	// A different client has its own bucket.
	result, err := c.CheckRateLimit(ctx, uniqueClientID("fresh"), 1, burst)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Allowed {
		t.Error("fresh client should not share the exhausted bucket")
	}
}

func TestIntegrationRateLimit_Concurrency(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	clientID := uniqueClientID("concurrent")
	const (
		rate  = 10
		burst = 5
	)

	var allowed, rejected int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				result, err := c.CheckRateLimit(ctx, clientID, rate, burst)
				if err != nil {
					t.Errorf("check rate limit: %v", err)
					return
				}
				if result.Allowed {
					atomic.AddInt64(&allowed, 1)
				} else {
					atomic.AddInt64(&rejected, 1)
				}
			}
		}()
	}
	wg.Wait()

	t.Logf("concurrency: %d allowed, %d rejected", allowed, rejected)

	// 60 near-simultaneous requests against a bucket of 5 refilling at
	// 10/s: a generous upper bound still proves the bucket held.
	if allowed > burst+2*rate {
		t.Errorf("too many requests allowed: %d", allowed)
	}
	if allowed == 0 {
		t.Error("expected at least the initial burst to pass")
	}
}
