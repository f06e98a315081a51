package webserver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/stake-plus/ecp-share/src/data"
)

// Limiter decides whether key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Describe() string
}

// RateLimiter is an in-memory sliding window limiter.
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		rate:     rate,
		window:   window,
		now:      time.Now,
	}

	// Cleanup old entries periodically
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for range ticker.C {
			rl.cleanup()
		}
	}()

	return rl
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, times := range rl.requests {
		valid := rl.recent(times, now)
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func (rl *RateLimiter) recent(times []time.Time, now time.Time) []time.Time {
	valid := times[:0]
	for _, t := range times {
		if now.Sub(t) < rl.window {
			valid = append(valid, t)
		}
	}
	return valid
}

func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := rl.recent(rl.requests[key], now)
	if len(valid) >= rl.rate {
		rl.requests[key] = valid
		return false, nil
	}
	rl.requests[key] = append(valid, now)
	return true, nil
}

func (rl *RateLimiter) Describe() string {
	return fmt.Sprintf("%d requests per %v", rl.rate, rl.window)
}

// RedisRateLimiter counts requests in fixed windows shared by every server
// instance.
type RedisRateLimiter struct {
	rdb    redis.Cmdable
	rate   int
	window time.Duration
}

func NewRedisRateLimiter(rdb redis.Cmdable, rate int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{rdb: rdb, rate: rate, window: window}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := data.IncrWindow(ctx, rl.rdb, key, rl.window, time.Now())
	if err != nil {
		return false, err
	}
	return n <= int64(rl.rate), nil
}

func (rl *RedisRateLimiter) Describe() string {
	return fmt.Sprintf("%d requests per %v", rl.rate, rl.window)
}

// RateLimitMiddleware rejects clients over the limit with 429. A failing
// limiter lets the request through.
func RateLimitMiddleware(limiter Limiter, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Printf("ratelimit: %v", err)
			c.Next()
			return
		}
		if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded: " + limiter.Describe(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
