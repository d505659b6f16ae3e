package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio/backend/pkg/logger"
	"github.com/devfolio/portfolio/backend/pkg/metrics"
)

// WindowLimiter caps requests per client IP within a fixed window. Each
// named limiter keeps its own counters.
type WindowLimiter struct {
	name    string
	max     int64
	window  time.Duration
	message string
	store   WindowStore
	now     func() time.Time
}

// NewWindowLimiter returns a limiter allowing max requests per window per IP.
// message is sent to clients that exceed it.
func NewWindowLimiter(name string, max int, window time.Duration, message string, store WindowStore) *WindowLimiter {
	return &WindowLimiter{
		name:    name,
		max:     int64(max),
		window:  window,
		message: message,
		store:   store,
		now:     time.Now,
	}
}

// WithClock replaces time.Now when computing Retry-After.
func (l *WindowLimiter) WithClock(now func() time.Time) *WindowLimiter {
	l.now = now
	return l
}

// Middleware counts the request and rejects it with 429 once the window is
// exhausted. Store failures let the request through.
func (l *WindowLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		count, resetAt, err := l.store.Hit(c.Request.Context(), l.name+":"+ip, l.window)
		if err != nil {
			logger.Errorf("rate limiter %s: %v", l.name, err)
			metrics.RateLimitErrors.WithLabelValues(l.name).Inc()
			c.Next()
			return
		}

		remaining := l.max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(l.max, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > l.max {
			retry := int64(math.Ceil(resetAt.Sub(l.now()).Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retry, 10))
			metrics.RateLimitRejected.WithLabelValues(l.name).Inc()
			logger.Warnf("rate limit %s exceeded for %s", l.name, ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": l.message})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues(l.name).Inc()
		c.Next()
	}
}
