// Package server assembles the HTTP pipeline.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio/backend/handlers"
	"github.com/devfolio/portfolio/backend/internal/config"
	contacthandler "github.com/devfolio/portfolio/backend/internal/contact/handler"
	"github.com/devfolio/portfolio/backend/internal/contact/service"
	"github.com/devfolio/portfolio/backend/pkg/logger"
	"github.com/devfolio/portfolio/backend/pkg/middleware"
)

// AuthService logs admins in and verifies their tokens.
type AuthService interface {
	handlers.AuthService
	middleware.Verifier
}

// Deps are the collaborators the router wires together.
type Deps struct {
	Config         *config.Config
	Contacts       service.Service
	Auth           AuthService
	ContactLimiter *middleware.WindowLimiter
	LoginLimiter   *middleware.WindowLimiter
	// Throttle is the optional global per-IP bucket; nil disables it.
	Throttle *middleware.Throttle
	// Ready lists the dependencies checked by /api/ready.
	Ready map[string]handlers.Pinger
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(d.Config.Server.TrustedProxies); err != nil {
		return nil, err
	}

	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		gin.CustomRecovery(recovered),
		middleware.SecurityHeaders(),
		middleware.CORS(d.Config.Server.FrontendURL),
		middleware.BodyLimit(d.Config.Server.BodyLimit),
	)

	api := r.Group("/api")
	if d.Throttle != nil {
		api.Use(d.Throttle.Middleware())
	}

	handlers.RegisterHealth(api, d.Ready)
	contacthandler.RegisterPublicRoutes(api, d.Contacts, limiterFunc(d.ContactLimiter)...)

	adminGroup := api.Group("/admin")
	auth := handlers.NewAuthHandler(d.Auth)
	auth.RegisterPublic(adminGroup, limiterFunc(d.LoginLimiter)...)

	protected := adminGroup.Group("", middleware.AuthMiddleware(d.Auth))
	auth.RegisterProtected(protected)
	contacthandler.RegisterAdminRoutes(protected, d.Contacts)

	handlers.RegisterSwagger(r)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Rota não encontrada"})
	})
	return r, nil
}

func limiterFunc(l *middleware.WindowLimiter) []gin.HandlerFunc {
	if l == nil {
		return nil
	}
	return []gin.HandlerFunc{l.Middleware()}
}

func recovered(c *gin.Context, err any) {
	logger.L().Error("panic recovered",
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetString("request_id"),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro interno do servidor"})
}
