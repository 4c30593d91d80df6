package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limits map[string]int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLimiter(client, time.Minute, limits), mr
}

func TestLimiterBlocksAfterLimit(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter(t, map[string]int{"verify-otp": 3})

	for i := range 3 {
		exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "verify-otp")
		if err != nil || exceeded {
			t.Fatalf("request %d: unexpected block (%v)", i, err)
		}
		if err := limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "verify-otp"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "verify-otp")
	if err != nil || !exceeded {
		t.Fatalf("expected limit to be exceeded, got %v %v", exceeded, err)
	}

	// other IPs and purposes are independent
	if exceeded, _ := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.2", "verify-otp"); exceeded {
		t.Fatalf("other ip should not be limited")
	}
	if exceeded, _ := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "login"); exceeded {
		t.Fatalf("unconfigured purpose should not be limited")
	}
}

func TestLimiterWindowResets(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestLimiter(t, map[string]int{"login": 1})

	_ = limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "login")
	if exceeded, _ := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "login"); !exceeded {
		t.Fatalf("expected block inside window")
	}

	// a later request must not extend the window
	mr.FastForward(30 * time.Second)
	_ = limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "login")
	mr.FastForward(31 * time.Second)

	if exceeded, _ := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "login"); exceeded {
		t.Fatalf("expected window to reset")
	}
}
