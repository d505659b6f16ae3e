package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio/backend/internal/admin"
	"github.com/devfolio/portfolio/backend/internal/apierror"
	"github.com/devfolio/portfolio/backend/internal/models"
	"github.com/devfolio/portfolio/backend/pkg/metrics"
	"github.com/devfolio/portfolio/backend/pkg/middleware"
)

// LoginRequest is the admin panel login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService is the part of admin.Service the handlers need.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*admin.LoginResult, error)
	Logout(ctx context.Context, sess *models.AdminSession) error
}

// AuthHandler holds dependencies
type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// RegisterPublic mounts POST /login. before runs ahead of the handler,
// typically the login rate limiter.
func (h *AuthHandler) RegisterPublic(rg gin.IRoutes, before ...gin.HandlerFunc) {
	rg.POST("/login", append(append([]gin.HandlerFunc{}, before...), h.Login)...)
}

// RegisterProtected mounts the routes that need a verified session. rg must
// already be guarded by the auth middleware.
func (h *AuthHandler) RegisterProtected(rg gin.IRoutes) {
	rg.GET("/verify", h.Verify)
	rg.POST("/logout", h.Logout)
}

// Login checks the admin credentials and returns a signed token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		apierror.Write(c, apierror.Invalid("Email e senha são obrigatórios"), "")
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		result := "error"
		switch apierror.Status(err) {
		case http.StatusBadRequest:
			result = "invalid"
		case http.StatusUnauthorized:
			result = "failure"
		}
		metrics.LoginAttempts.WithLabelValues(result).Inc()
		apierror.Write(c, err, "Erro interno do servidor")
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login realizado com sucesso",
		"token":   res.Token,
		"user":    gin.H{"email": res.Session.Email, "role": res.Session.Role},
	})
}

// Verify echoes the session of a valid token.
func (h *AuthHandler) Verify(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		apierror.Write(c, apierror.ErrUnauthenticated, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token válido", "user": sess})
}

// Logout revokes the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		apierror.Write(c, apierror.ErrUnauthenticated, "")
		return
	}
	if err := h.svc.Logout(c.Request.Context(), sess); err != nil {
		apierror.Write(c, err, "Erro interno do servidor")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout realizado com sucesso"})
}
