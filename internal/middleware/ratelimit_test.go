package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/meetlog/meetlog/internal/cache"
)

type fakeLimiter struct {
	result *cache.RateLimitResult
	err    error
	calls  int
}

func (f *fakeLimiter) CheckRateLimit(ctx context.Context, clientID string, ratePerSecond, burst int) (*cache.RateLimitResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func rateLimitedHandler(limiter *fakeLimiter, enabled bool) http.Handler {
	cfg := RateLimitConfig{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Cache:   limiter,
		Enabled: enabled,
		RPS:     10,
		Burst:   20,
	}
	return RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimit_Allowed(t *testing.T) {
	limiter := &fakeLimiter{result: &cache.RateLimitResult{
		Allowed:   true,
		Remaining: 19,
		ResetAt:   time.Now().Add(time.Second),
	}}
	handler := rateLimitedHandler(limiter, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interactions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "19" {
		t.Errorf("X-RateLimit-Remaining = %q, want 19", got)
	}
}

func TestRateLimit_Rejected(t *testing.T) {
	limiter := &fakeLimiter{result: &cache.RateLimitResult{
		Allowed:    false,
		Remaining:  0,
		ResetAt:    time.Now().Add(3 * time.Second),
		RetryAfter: 3 * time.Second,
	}}
	handler := rateLimitedHandler(limiter, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interactions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "3" {
		t.Errorf("Retry-After = %q, want 3", got)
	}
	if !strings.Contains(rec.Body.String(), "RATE_LIMITED") {
		t.Errorf("body missing RATE_LIMITED code: %s", rec.Body.String())
	}
}

func TestRateLimit_FailsOpenOnLimiterError(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis unreachable")}
	handler := rateLimitedHandler(limiter, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interactions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// An unreachable limiter must not block recording.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	limiter := &fakeLimiter{}
	handler := rateLimitedHandler(limiter, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/interactions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if limiter.calls != 0 {
		t.Errorf("expected no limiter calls when disabled, got %d", limiter.calls)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr only", nil, "203.0.113.9:1234", "203.0.113.9:1234"},
		{"x-real-ip", map[string]string{"X-Real-IP": "198.51.100.7"}, "10.0.0.1:1234", "198.51.100.7"},
		{"x-forwarded-for single", map[string]string{"X-Forwarded-For": "198.51.100.7"}, "10.0.0.1:1234", "198.51.100.7"},
		{"x-forwarded-for chain", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2"}, "10.0.0.1:1234", "198.51.100.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
