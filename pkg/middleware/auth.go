package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio/backend/internal/apierror"
	"github.com/devfolio/portfolio/backend/internal/models"
)

// SessionKey is the gin context key holding the verified *models.AdminSession.
const SessionKey = "session"

// Verifier is the minimal interface the middleware depends on.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.AdminSession, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is absent or uses another scheme.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using
// the provided verifier and stores the session under SessionKey.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			apierror.Write(c, apierror.ErrUnauthenticated, "")
			return
		}
		sess, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			apierror.Write(c, err, "Erro interno do servidor")
			return
		}
		c.Set(SessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session stored by AuthMiddleware.
func SessionFrom(c *gin.Context) (*models.AdminSession, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*models.AdminSession)
	return s, ok && s != nil
}
