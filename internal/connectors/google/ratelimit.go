package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ServiceType identifies a Google API for rate limiting.
type ServiceType string

const (
	ServiceGmail    ServiceType = "gmail"
	ServiceCalendar ServiceType = "calendar"
)

// RateLimitConfig is a token bucket: a sustained rate and a burst.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimits stay well below Google's per-user quotas. A Gmail
// messages.get costs five quota units.
var DefaultRateLimits = map[ServiceType]RateLimitConfig{
	ServiceGmail:    {RequestsPerSecond: 2, BurstSize: 5},
	ServiceCalendar: {RequestsPerSecond: 5, BurstSize: 10},
}

// defaultBackoff applies when a 429 carries no Retry-After.
const defaultBackoff = time.Minute

// RateLimiter paces requests to one Google API and pauses all of them after
// a 429 response.
type RateLimiter struct {
	limiter *rate.Limiter
	now     func() time.Time

	mu         sync.Mutex
	pausedTill time.Time
}

// NewRateLimiter creates a limiter with the default limits for service.
func NewRateLimiter(service ServiceType) *RateLimiter {
	cfg, ok := DefaultRateLimits[service]
	if !ok {
		cfg = DefaultRateLimits[ServiceCalendar]
	}
	return NewRateLimiterWithConfig(cfg)
}

// NewRateLimiterWithConfig creates a limiter with explicit limits.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		now:     time.Now,
	}
}

// Wait blocks until the next request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if d := r.PausedFor(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// Observe pauses the limiter when err is a rate limit response, for the
// response's Retry-After or defaultBackoff. Other errors are ignored.
func (r *RateLimiter) Observe(err error) {
	if err == nil || !IsRateLimited(err) {
		return
	}
	backoff := time.Duration(RetryAfter(err)) * time.Second
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if until := r.now().Add(backoff); until.After(r.pausedTill) {
		r.pausedTill = until
	}
}

// PausedFor returns how long requests are held back after a 429.
func (r *RateLimiter) PausedFor() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return max(r.pausedTill.Sub(r.now()), 0)
}
