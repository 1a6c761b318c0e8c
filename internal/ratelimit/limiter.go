package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/mariasandoval/storelocator-backend/pkg/config"
)

const (
	minuteWindow = "minute"
	hourWindow   = "hour"

	minuteStampLayout = "200601021504"
	hourStampLayout   = "2006010215"
)

type counterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(parts ...string) string
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter admits or denies requests per subject under dual fixed windows.
type Limiter interface {
	Admit(ctx context.Context, subject string, now time.Time) (Decision, error)
}

type limiter struct {
	store     counterStore
	perMinute int64
	perHour   int64
}

// NewLimiter builds a limiter over the shared counter store.
func NewLimiter(store counterStore, cfg config.RateLimitConfig) (Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("counter store required")
	}
	if cfg.PerMinute <= 0 || cfg.PerHour <= 0 {
		return nil, fmt.Errorf("rate limit caps must be positive")
	}
	return &limiter{
		store:     store,
		perMinute: int64(cfg.PerMinute),
		perHour:   int64(cfg.PerHour),
	}, nil
}

// Admit increments both window counters atomically and then checks the caps,
// so concurrent callers sharing a subject can never both slip past the limit.
// Both counters account for a denied attempt as well.
func (l *limiter) Admit(ctx context.Context, subject string, now time.Time) (Decision, error) {
	if subject == "" {
		subject = "anonymous"
	}
	now = now.UTC()

	minuteKey := l.store.RateLimitKey(subject, minuteWindow, now.Format(minuteStampLayout))
	hourKey := l.store.RateLimitKey(subject, hourWindow, now.Format(hourStampLayout))

	// TTLs only garbage-collect stale windows; the clock stamp in the key
	// is what rolls the quota over.
	minuteCount, err := l.store.IncrWithTTL(ctx, minuteKey, 2*time.Minute)
	if err != nil {
		return Decision{}, fmt.Errorf("increment minute counter: %w", err)
	}
	hourCount, err := l.store.IncrWithTTL(ctx, hourKey, 2*time.Hour)
	if err != nil {
		return Decision{}, fmt.Errorf("increment hour counter: %w", err)
	}

	if minuteCount > l.perMinute {
		return Decision{RetryAfter: untilNextMinute(now)}, nil
	}
	if hourCount > l.perHour {
		return Decision{RetryAfter: untilNextHour(now)}, nil
	}
	return Decision{Allowed: true}, nil
}

func untilNextMinute(now time.Time) time.Duration {
	return now.Truncate(time.Minute).Add(time.Minute).Sub(now)
}

func untilNextHour(now time.Time) time.Duration {
	return now.Truncate(time.Hour).Add(time.Hour).Sub(now)
}

// RetryAfterSeconds renders the decision's retry hint for a Retry-After
// header, rounding up so a client never retries inside the same window.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed || d.RetryAfter <= 0 {
		return 0
	}
	secs := int(d.RetryAfter / time.Second)
	if d.RetryAfter%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
