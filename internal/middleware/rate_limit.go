package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"plan-pleno/internal/schemas"
	"plan-pleno/internal/utils"
)

type window struct {
	start time.Time
	count int
}

// RateLimiter counts requests per client IP in fixed windows.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	length  time.Duration
	max     int
	now     func() time.Time
}

func NewRateLimiter(length time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		length:  length,
		max:     max,
		now:     time.Now,
	}
}

// allow records a request of key and reports whether it is within the limit,
// together with the remaining requests and the end of the current window.
func (rl *RateLimiter) allow(key string) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.length {
		rl.evictExpired(now)
		w = &window{start: now}
		rl.windows[key] = w
	}

	w.count++
	reset := w.start.Add(rl.length)
	if w.count > rl.max {
		return false, 0, reset
	}
	return true, rl.max - w.count, reset
}

func (rl *RateLimiter) evictExpired(now time.Time) {
	for key, w := range rl.windows {
		if now.Sub(w.start) >= rl.length {
			delete(rl.windows, key)
		}
	}
}

// Middleware answers with 429 once a client exceeds the limit of its window.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, reset := rl.allow(c.ClientIP())

		c.Header("RateLimit-Limit", strconv.Itoa(rl.max))
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(int(time.Until(reset).Seconds())))

		if !allowed {
			utils.WriteAndLogError(c, schemas.TooManyRequests, http.StatusTooManyRequests, errors.New("rate limit exceeded for "+c.ClientIP()))
			return
		}
		c.Next()
	}
}
