package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/devfolio/portfolio/backend/pkg/metrics"
)

// Throttle is a per-client-IP token bucket applied in front of the API.
// Idle buckets are dropped after idleTTL.
type Throttle struct {
	rps     rate.Limit
	burst   int
	idleTTL time.Duration

	mu      sync.Mutex
	clients map[string]*throttleEntry
	sweep   time.Time
	now     func() time.Time
}

type throttleEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewThrottle returns a Throttle allowing rps events per second with the given burst.
func NewThrottle(rps float64, burst int) *Throttle {
	return &Throttle{
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		clients: make(map[string]*throttleEntry),
		now:     time.Now,
	}
}

// limiter returns (and lazily creates) the bucket for key.
func (t *Throttle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if now.Sub(t.sweep) > t.idleTTL {
		for k, e := range t.clients {
			if now.Sub(e.seen) > t.idleTTL {
				delete(t.clients, k)
			}
		}
		t.sweep = now
	}
	e, ok := t.clients[key]
	if !ok {
		e = &throttleEntry{lim: rate.NewLimiter(t.rps, t.burst)}
		t.clients[key] = e
	}
	e.seen = now
	return e.lim
}

// Middleware enforces the bucket for the client IP.
func (t *Throttle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if key == "" {
			key = "unknown"
		}
		if !t.limiter(key).AllowN(t.now(), 1) {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("throttle").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Muitas requisições. Tente novamente em instantes.",
			})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("throttle").Inc()
		c.Next()
	}
}
