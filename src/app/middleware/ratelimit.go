package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"gussgame/src/app/http/response"
)

const (
	// limiterIdleTTL is how long an unused limiter is kept.
	limiterIdleTTL = 10 * time.Minute
	// limiterCleanupThreshold is the map size at which idle limiters are pruned.
	limiterCleanupThreshold = 1024
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter hands out one token bucket per key.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	r       rate.Limit
	b       int
}

func NewKeyedRateLimiter(perSecond float64, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		entries: make(map[string]*limiterEntry),
		r:       rate.Limit(perSecond),
		b:       burst,
	}
}

// Allow reports whether one more event for key fits in its bucket.
func (l *KeyedRateLimiter) Allow(key string) bool {
	return l.limiter(key, time.Now()).Allow()
}

func (l *KeyedRateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= limiterCleanupThreshold {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(l.entries, k)
			}
		}
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimitPerUser throttles authenticated callers by user id, falling back
// to the client IP. A zero or negative rate disables the limiter.
func RateLimitPerUser(l *KeyedRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.r <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP()
		if p, ok := GetPrincipal(c); ok {
			key = p.UserID.String()
		}
		if !l.Allow(key) {
			response.TooManyRequests(c, GetRequestID(c))
			return
		}
		c.Next()
	}
}
