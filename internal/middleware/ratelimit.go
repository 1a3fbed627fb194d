package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/knagato/taskflow-api/internal/errors"
	"golang.org/x/time/rate"
)

// RateLimiterConfig holds the per-client request quota.
type RateLimiterConfig struct {
	Requests        int           // quota per window
	Window          time.Duration // rolling window length
	CleanupInterval time.Duration // eviction interval for idle clients
}

// DefaultRateLimiterConfig returns the default quota: 100 requests per
// 15 minutes per client.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Requests:        100,
		Window:          15 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter applies a token-bucket quota per client IP. The bucket
// refills at Requests/Window with a burst of the full quota, which
// approximates a rolling window.
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts its background
// cleanup of idle client entries.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Middleware rejects requests over the quota with a uniform throttling
// response, regardless of which operation was requested.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getOrCreateLimiter(c.ClientIP())

		if !limiter.Allow() {
			c.Header("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			apierrors.TooManyRequests(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// retryAfterSeconds is the wait until the bucket yields one token,
// rounded up to at least a second.
func (rl *RateLimiter) retryAfterSeconds() int {
	perToken := rl.config.Window / time.Duration(rl.config.Requests)
	seconds := int((perToken + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// ClientCount returns the number of tracked clients. For tests.
func (rl *RateLimiter) ClientCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) getOrCreateLimiter(clientIP string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if cl, exists := rl.limiters[clientIP]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	refill := rate.Limit(float64(rl.config.Requests) / rl.config.Window.Seconds())
	limiter := rate.NewLimiter(refill, rl.config.Requests)
	rl.limiters[clientIP] = &clientLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup evicts clients idle for more than twice the cleanup interval.
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for clientIP, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, clientIP)
		}
	}
}
