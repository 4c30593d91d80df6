// Package ratelimit implements fixed-window request limits per client IP in Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts requests per IP and purpose inside a fixed window
type Limiter struct {
	client redis.UniversalClient
	window time.Duration
	limits map[string]int
}

// NewLimiter creates a limiter. Purposes missing from limits are not limited.
func NewLimiter(client redis.UniversalClient, window time.Duration, limits map[string]int) *Limiter {
	return &Limiter{client: client, window: window, limits: limits}
}

func ipKey(purpose, ip string) string {
	return fmt.Sprintf("ratelimit:ip:%s:%s", purpose, ip)
}

// CheckIPRateLimitWithPurpose reports whether ip has used up its requests for purpose
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	limit, ok := l.limits[purpose]
	if !ok || limit <= 0 {
		return false, nil
	}

	val, err := l.client.Get(ctx, ipKey(purpose, ip)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get rate limit counter: %w", err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return false, fmt.Errorf("invalid rate limit counter %q: %w", val, err)
	}

	return count >= limit, nil
}

// RecordIPRequestWithPurpose counts one request. The window starts at the first request.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	if _, ok := l.limits[purpose]; !ok {
		return nil
	}

	key := ipKey(purpose, ip)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return nil
}
