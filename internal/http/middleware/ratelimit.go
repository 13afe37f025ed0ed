package middleware

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the per-client limiter map; it is reset when full.
const maxTrackedClients = 10000

// RateLimiter throttles requests per client IP with a token bucket.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRateLimiter allows rps requests per second per client, with bursts up to burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Handler rejects requests over the limit with 429.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.limiter(c.IP()).Allow() {
			c.Set(fiber.HeaderRetryAfter, "1")
			return fiber.ErrTooManyRequests
		}
		return c.Next()
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedClients {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[key] = lim
	}
	return lim
}
