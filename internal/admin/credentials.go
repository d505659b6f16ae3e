// Package admin authenticates the single configured administrator.
package admin

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/devfolio/portfolio/backend/internal/config"
)

// CredentialValidator checks a submitted email/password pair.
type CredentialValidator interface {
	Validate(email, password string) bool
}

// Credentials holds the configured admin email and bcrypt hash.
type Credentials struct {
	email []byte
	hash  []byte
}

var _ CredentialValidator = (*Credentials)(nil)

// dummyHash is compared against when no admin is configured so the failing
// path still costs one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-admin-configured"), bcrypt.MinCost)

// NewCredentials builds a validator from config. A plain password is hashed
// once here; an explicit hash takes precedence. With neither configured,
// every login fails.
func NewCredentials(cfg config.AdminConfig) (*Credentials, error) {
	c := &Credentials{email: []byte(normalizeEmail(cfg.Email))}
	switch {
	case cfg.PasswordHash != "":
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		c.hash = []byte(cfg.PasswordHash)
	case cfg.Password != "":
		h, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		c.hash = h
	}
	return c, nil
}

// Configured reports whether a login can ever succeed.
func (c *Credentials) Configured() bool {
	return len(c.email) > 0 && len(c.hash) > 0
}

// Validate runs both comparisons unconditionally so an unknown email and a
// wrong password take the same time.
func (c *Credentials) Validate(email, password string) bool {
	hash := c.hash
	if len(hash) == 0 {
		hash = dummyHash
	}
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), c.email) == 1
	passOK := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	return emailOK && passOK && c.Configured()
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
