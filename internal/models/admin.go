package models

import "time"

// RoleAdmin is the only role the panel knows about.
const RoleAdmin = "admin"

// AdminID is the fixed subject of the single configured administrator.
const AdminID = "admin"

// AdminSession is the identity carried by a verified access token. It is
// rebuilt from the token on every request and never persisted.
type AdminSession struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`

	// TokenID and ExpiresAt identify the presented token for logout.
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}
