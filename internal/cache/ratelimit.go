package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// rateLimitPrefix is the Redis key prefix for per-client limits.
	rateLimitPrefix = "ratelimit:client:"
	// rateLimitTTL is the TTL for rate limit keys.
	rateLimitTTL = 60 * time.Second
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript is a Lua script implementing the token bucket
// algorithm. Refill and consumption happen atomically in one call.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckRateLimit checks and updates the token bucket for one client.
// The client identifier is hashed so raw IP addresses are never stored.
// Redis failures are returned as errors; whether to fail open on them
// is the caller's decision.
func (c *Cache) CheckRateLimit(ctx context.Context, clientID string, ratePerSecond, burst int) (*RateLimitResult, error) {
	key := rateLimitPrefix + hashClientID(clientID)
	now := time.Now().Unix()

	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		float64(ratePerSecond), burst, now, int(rateLimitTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(result) != 3 {
		return nil, fmt.Errorf("rate limit script returned %d values, want 3", len(result))
	}

	allowed := result[0] == 1
	retryAfterSec := result[1]
	remaining := result[2]

	return &RateLimitResult{
		Allowed:    allowed,
		Remaining:  remaining,
		ResetAt:    time.Now().Add(time.Second / time.Duration(max(ratePerSecond, 1))),
		RetryAfter: time.Duration(retryAfterSec) * time.Second,
	}, nil
}

// hashClientID creates a truncated SHA256 hash of a client identifier.
// This provides privacy while maintaining uniqueness.
func hashClientID(id string) string {
	hash := sha256.Sum256([]byte(id))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
