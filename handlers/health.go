package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio/backend/pkg/logger"
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

var startTime = time.Now()

// RegisterHealth mounts GET /health (liveness) and GET /ready (readiness).
// Every entry in deps must answer Ping for the service to be ready.
func RegisterHealth(rg gin.IRoutes, deps map[string]Pinger) {
	rg.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Servidor funcionando!",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	rg.GET("/ready", func(c *gin.Context) {
		ready := true
		status := make(map[string]bool, len(names))
		for _, name := range names {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			err := deps[name].Ping(ctx)
			cancel()
			if err != nil {
				logger.Warnf("readiness: %s unavailable: %v", name, err)
				ready = false
			}
			status[name] = err == nil
		}

		code, state := http.StatusOK, "ready"
		if !ready {
			code, state = http.StatusServiceUnavailable, "not_ready"
		}
		c.JSON(code, gin.H{"success": ready, "status": state, "deps": status, "uptime": time.Since(startTime).String()})
	})
}
