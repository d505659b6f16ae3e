package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/portfolio/backend/internal/apierror"
	"github.com/devfolio/portfolio/backend/internal/config"
	"github.com/devfolio/portfolio/backend/internal/models"
	"github.com/devfolio/portfolio/backend/internal/sessions"
	"github.com/devfolio/portfolio/backend/internal/tokens"
)

func TestCredentials_PlainPassword(t *testing.T) {
	c, err := NewCredentials(config.AdminConfig{Email: "Admin@Example.com", Password: "s3cret"})
	require.NoError(t, err)
	require.True(t, c.Configured())

	require.True(t, c.Validate("admin@example.com", "s3cret"))
	require.True(t, c.Validate("  ADMIN@example.com ", "s3cret"))
	require.False(t, c.Validate("admin@example.com", "wrong"))
	require.False(t, c.Validate("other@example.com", "s3cret"))
	require.False(t, c.Validate("", ""))
}

func TestCredentials_Hash(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("hashed-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	c, err := NewCredentials(config.AdminConfig{Email: "admin@example.com", Password: "ignored", PasswordHash: string(h)})
	require.NoError(t, err)
	require.True(t, c.Validate("admin@example.com", "hashed-pass"))
	require.False(t, c.Validate("admin@example.com", "ignored"))
}

func TestCredentials_BadHashRejected(t *testing.T) {
	_, err := NewCredentials(config.AdminConfig{Email: "admin@example.com", PasswordHash: "plaintext"})
	require.Error(t, err)
}

func TestCredentials_NotConfigured(t *testing.T) {
	c, err := NewCredentials(config.AdminConfig{})
	require.NoError(t, err)
	require.False(t, c.Configured())
	require.False(t, c.Validate("", ""))
	require.False(t, c.Validate("admin@example.com", "no-admin-configured"))
}

type stubTokens struct {
	issued []models.AdminSession
	verify func(string) (*models.AdminSession, error)
	err    error
}

func (s *stubTokens) Issue(sess models.AdminSession) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued = append(s.issued, sess)
	return "token-" + sess.ID, nil
}

func (s *stubTokens) Verify(tok string) (*models.AdminSession, error) {
	return s.verify(tok)
}

type fixedCreds bool

func (f fixedCreds) Validate(string, string) bool { return bool(f) }

func TestLogin(t *testing.T) {
	ts := &stubTokens{}
	svc := NewService(fixedCreds(true), ts, nil, "Admin@Example.com")

	res, err := svc.Login(context.Background(), "admin@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "token-admin", res.Token)
	require.Equal(t, models.AdminSession{ID: "admin", Email: "admin@example.com", Role: "admin"}, res.Session)
	require.Len(t, ts.issued, 1)
}

func TestLogin_MissingFields(t *testing.T) {
	svc := NewService(fixedCreds(true), &stubTokens{}, nil, "admin@example.com")
	for _, in := range [][2]string{{"", "pw"}, {"a@b.com", ""}, {"  ", "pw"}} {
		_, err := svc.Login(context.Background(), in[0], in[1])
		var ve *apierror.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, "Email e senha são obrigatórios", ve.Message)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	ts := &stubTokens{}
	svc := NewService(fixedCreds(false), ts, nil, "admin@example.com")
	_, err := svc.Login(context.Background(), "admin@example.com", "nope")
	require.ErrorIs(t, err, apierror.ErrUnauthorized)
	require.Empty(t, ts.issued)
}

func TestLogin_IssueFailureIsInternal(t *testing.T) {
	svc := NewService(fixedCreds(true), &stubTokens{err: errors.New("boom")}, nil, "admin@example.com")
	_, err := svc.Login(context.Background(), "admin@example.com", "pw")
	require.Error(t, err)
	require.Equal(t, 500, apierror.Status(err))
}

func TestVerifyAndLogout(t *testing.T) {
	ctx := context.Background()
	jwtSvc := tokens.NewJWTService(config.JWTConfig{Secret: "test-secret-32-bytes-should-be-long-enough", TTL: time.Hour})
	creds, err := NewCredentials(config.AdminConfig{Email: "admin@example.com", Password: "pw"})
	require.NoError(t, err)
	svc := NewService(creds, jwtSvc, sessions.NewMemoryRevoker(), "admin@example.com")

	_, err = svc.Verify(ctx, "")
	require.ErrorIs(t, err, apierror.ErrUnauthenticated)
	_, err = svc.Verify(ctx, "garbage")
	require.ErrorIs(t, err, apierror.ErrInvalidToken)

	res, err := svc.Login(ctx, "admin@example.com", "pw")
	require.NoError(t, err)

	sess, err := svc.Verify(ctx, res.Token)
	require.NoError(t, err)
	require.Equal(t, "admin", sess.Role)

	require.NoError(t, svc.Logout(ctx, sess))
	_, err = svc.Verify(ctx, res.Token)
	require.ErrorIs(t, err, apierror.ErrInvalidToken)

	again, err := svc.Login(ctx, "admin@example.com", "pw")
	require.NoError(t, err)
	_, err = svc.Verify(ctx, again.Token)
	require.NoError(t, err)
}

type brokenRevoker struct{}

func (brokenRevoker) Revoke(context.Context, string, time.Time) error { return errors.New("down") }
func (brokenRevoker) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("down")
}

func TestVerify_RevocationStoreDown(t *testing.T) {
	ts := &stubTokens{verify: func(string) (*models.AdminSession, error) {
		return &models.AdminSession{ID: "admin", Role: "admin", TokenID: "jti"}, nil
	}}
	svc := NewService(fixedCreds(true), ts, brokenRevoker{}, "admin@example.com")
	_, err := svc.Verify(context.Background(), "tok")
	require.Error(t, err)
	require.Equal(t, 500, apierror.Status(err))
}
