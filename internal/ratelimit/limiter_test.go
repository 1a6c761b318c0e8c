package ratelimit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mariasandoval/storelocator-backend/pkg/config"
)

func TestAdmitAllowsUpToMinuteCap(t *testing.T) {
	store := newStubCounterStore()
	limiter := newTestLimiter(t, store)
	now := time.Date(2026, 1, 2, 15, 4, 30, 0, time.UTC)

	for i := 0; i < 10; i++ {
		decision, err := limiter.Admit(context.Background(), "user-1", now)
		if err != nil {
			t.Fatalf("admit %d: %v", i+1, err)
		}
		if !decision.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	decision, err := limiter.Admit(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("11th admit: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("11th request within the same minute should be denied")
	}
	if decision.RetryAfter != 30*time.Second {
		t.Fatalf("expected retry after 30s, got %v", decision.RetryAfter)
	}
}

func TestAdmitMinuteRolloverResetsQuota(t *testing.T) {
	store := newStubCounterStore()
	limiter := newTestLimiter(t, store)
	now := time.Date(2026, 1, 2, 15, 4, 59, 0, time.UTC)

	for i := 0; i < 11; i++ {
		if _, err := limiter.Admit(context.Background(), "user-1", now); err != nil {
			t.Fatalf("admit: %v", err)
		}
	}

	next := now.Add(time.Second)
	decision, err := limiter.Admit(context.Background(), "user-1", next)
	if err != nil {
		t.Fatalf("admit after rollover: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("request after minute rollover should be allowed")
	}
}

func TestAdmitHourCapDenies(t *testing.T) {
	store := newStubCounterStore()
	limiter := newTestLimiter(t, store)
	base := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

	// Spread requests across minutes so only the hour cap can trip.
	count := 0
	for minute := 0; minute < 20 && count < 100; minute++ {
		for i := 0; i < 10 && count < 100; i++ {
			now := base.Add(time.Duration(minute) * time.Minute)
			decision, err := limiter.Admit(context.Background(), "user-1", now)
			if err != nil {
				t.Fatalf("admit: %v", err)
			}
			if !decision.Allowed {
				t.Fatalf("request %d should be allowed", count+1)
			}
			count++
		}
	}

	now := base.Add(20 * time.Minute)
	decision, err := limiter.Admit(context.Background(), "user-1", now)
	if err != nil {
		t.Fatalf("101st admit: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("101st request within the hour should be denied")
	}
	if decision.RetryAfter != 40*time.Minute {
		t.Fatalf("expected retry until the top of the hour, got %v", decision.RetryAfter)
	}
}

func TestAdmitSubjectsAreIndependent(t *testing.T) {
	store := newStubCounterStore()
	limiter := newTestLimiter(t, store)
	now := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)

	for i := 0; i < 11; i++ {
		if _, err := limiter.Admit(context.Background(), "user-1", now); err != nil {
			t.Fatalf("admit: %v", err)
		}
	}

	decision, err := limiter.Admit(context.Background(), "user-2", now)
	if err != nil {
		t.Fatalf("admit other subject: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("a different subject must not share the quota")
	}
}

func TestRetryAfterSecondsRoundsUp(t *testing.T) {
	d := Decision{RetryAfter: 1500 * time.Millisecond}
	if got := d.RetryAfterSeconds(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	allowed := Decision{Allowed: true}
	if got := allowed.RetryAfterSeconds(); got != 0 {
		t.Fatalf("allowed decision should have no retry hint, got %d", got)
	}
}

func newTestLimiter(t *testing.T, store *stubCounterStore) Limiter {
	t.Helper()
	limiter, err := NewLimiter(store, config.RateLimitConfig{PerMinute: 10, PerHour: 100})
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	return limiter
}

type stubCounterStore struct {
	counts map[string]int64
}

func newStubCounterStore() *stubCounterStore {
	return &stubCounterStore{counts: make(map[string]int64)}
}

func (s *stubCounterStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.counts[key]++
	return s.counts[key], nil
}

func (s *stubCounterStore) RateLimitKey(parts ...string) string {
	return "rate_limit:" + strings.Join(parts, ":")
}
