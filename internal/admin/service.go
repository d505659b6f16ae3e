package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/devfolio/portfolio/backend/internal/apierror"
	"github.com/devfolio/portfolio/backend/internal/models"
	"github.com/devfolio/portfolio/backend/internal/sessions"
	"github.com/devfolio/portfolio/backend/internal/tokens"
	"github.com/devfolio/portfolio/backend/pkg/logger"
)

// Service implements login, token verification and logout for the admin panel.
type Service struct {
	creds   CredentialValidator
	tokens  tokens.Service
	revoker sessions.Revoker
	email   string
}

// NewService wires the auth flow. email is the configured admin address,
// echoed back in sessions.
func NewService(creds CredentialValidator, ts tokens.Service, rv sessions.Revoker, email string) *Service {
	return &Service{creds: creds, tokens: ts, revoker: rv, email: normalizeEmail(email)}
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token   string
	Session models.AdminSession
}

// Login checks the credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apierror.Invalid("Email e senha são obrigatórios")
	}
	if !s.creds.Validate(email, password) {
		logger.Warnf("admin login failed for %q", normalizeEmail(email))
		return nil, apierror.ErrUnauthorized
	}
	sess := models.AdminSession{ID: models.AdminID, Email: s.email, Role: models.RoleAdmin}
	tok, err := s.tokens.Issue(sess)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	logger.Infof("admin logged in: %s", sess.Email)
	return &LoginResult{Token: tok, Session: sess}, nil
}

// Verify resolves a bearer token to a session. Revoked tokens are rejected
// as invalid.
func (s *Service) Verify(ctx context.Context, token string) (*models.AdminSession, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apierror.ErrUnauthenticated
	}
	sess, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if s.revoker != nil && sess.TokenID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, sess.TokenID)
		if err != nil {
			return nil, fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: revoked", apierror.ErrInvalidToken)
		}
	}
	return sess, nil
}

// Logout revokes the token behind sess for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, sess *models.AdminSession) error {
	if s.revoker == nil || sess == nil || sess.TokenID == "" {
		return nil
	}
	if err := s.revoker.Revoke(ctx, sess.TokenID, sess.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
