package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apierrors "github.com/palemoky/zhconv/internal/errors"
)

// limiterTTL is how long an idle client keeps its limiter.
const limiterTTL = 10 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per client IP.
type RateLimiter struct {
	clients map[string]*client
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*client),
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// getLimiter returns a rate limiter for the given key (IP address) and drops
// clients idle for longer than limiterTTL.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[key]
	if !ok {
		rl.evict(now)
		c = &client{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now

	return c.limiter
}

func (rl *RateLimiter) evict(now time.Time) {
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) > limiterTTL {
			delete(rl.clients, key)
		}
	}
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Middleware returns a Gin middleware function for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getLimiter(c.ClientIP())

		if !limiter.Allow() {
			Abort(c, apierrors.ErrRateLimited)
			return
		}

		c.Next()
	}
}
