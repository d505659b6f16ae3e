package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/devfolio/portfolio/backend/internal/apierror"
	"github.com/devfolio/portfolio/backend/internal/config"
	"github.com/devfolio/portfolio/backend/internal/models"
)

// Service issues and verifies admin access tokens.
type Service interface {
	Issue(s models.AdminSession) (string, error)
	Verify(token string) (*models.AdminSession, error)
}

// Claims is the JWT payload of an admin access token.
type Claims struct {
	AdminID string `json:"id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs tokens with HS256.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

var _ Service = (*JWTService)(nil)

// NewJWTService builds a JWTService from the JWT config section.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTService{secret: []byte(cfg.Secret), ttl: ttl, issuer: cfg.Issuer, now: time.Now}
}

// WithClock replaces time.Now for both issuing and verification.
func (j *JWTService) WithClock(now func() time.Time) *JWTService {
	j.now = now
	return j
}

// TTL is the lifetime of issued tokens.
func (j *JWTService) TTL() time.Duration { return j.ttl }

// Issue returns a signed token for s. A fresh jti is assigned to every token.
func (j *JWTService) Issue(s models.AdminSession) (string, error) {
	now := j.now()
	claims := Claims{
		AdminID: s.ID,
		Email:   s.Email,
		Role:    s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and returns the session it carries. Every failure
// wraps apierror.ErrInvalidToken.
func (j *JWTService) Verify(token string) (*models.AdminSession, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithIssuedAt(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierror.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, apierror.ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: token has no expiry", apierror.ErrInvalidToken)
	}
	if claims.AdminID == "" || claims.Role == "" {
		return nil, fmt.Errorf("%w: missing identity claims", apierror.ErrInvalidToken)
	}
	return &models.AdminSession{
		ID:        claims.AdminID,
		Email:     claims.Email,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
