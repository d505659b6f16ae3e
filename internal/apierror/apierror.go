// Package apierror defines the error taxonomy shared by the services and the
// HTTP layer, and the mapping from those errors to JSON responses.
package apierror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devfolio/portfolio/backend/pkg/logger"
)

var (
	// ErrUnauthorized is returned when login credentials do not match.
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when a protected route is called without a token.
	ErrUnauthenticated = errors.New("missing access token")
	// ErrInvalidToken is returned when a token is malformed, expired, or revoked.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrNotFound is returned when a contact id does not exist.
	ErrNotFound = errors.New("contact not found")
	// ErrRateLimited is returned when a client exceeds its request window.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// messages holds the user-facing text for each sentinel.
var messages = []struct {
	err error
	msg string
}{
	{ErrUnauthorized, "Credenciais inválidas"},
	{ErrUnauthenticated, "Token de acesso requerido"},
	{ErrInvalidToken, "Token inválido ou expirado"},
	{ErrNotFound, "Contato não encontrado"},
	{ErrRateLimited, "Muitas tentativas. Tente novamente mais tarde."},
}

// Message returns the user-facing text for err, or "" when err is not part
// of the taxonomy.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return ""
}

// FieldError is a single failed constraint on an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports bad or missing input.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return e.Message + ": " + strings.Join(msgs, "; ")
}

// Invalid builds a ValidationError without field details.
func Invalid(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// Status maps an error to its HTTP status code. Unknown errors are 500.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Write aborts the request with the JSON body for err. Internal errors are
// logged with the request id and answered with fallback, never err's text.
func Write(c *gin.Context, err error, fallback string) {
	status := Status(err)
	body := gin.H{"success": false}

	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		body["message"] = ve.Message
		if len(ve.Fields) > 0 {
			msgs := make([]string, 0, len(ve.Fields))
			for _, f := range ve.Fields {
				msgs = append(msgs, f.Message)
			}
			body["errors"] = msgs
			body["fields"] = ve.Fields
		}
	case status == http.StatusInternalServerError:
		logger.L().Error(fallback,
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
		)
		body["message"] = fallback
	default:
		body["message"] = Message(err)
	}
	c.AbortWithStatusJSON(status, body)
}
