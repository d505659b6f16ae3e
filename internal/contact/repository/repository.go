package repository

import (
	"context"
	"time"

	"github.com/devfolio/portfolio/backend/internal/apierror"
	"github.com/devfolio/portfolio/backend/internal/contact"
)

// ErrNotFound is returned by UpdateStatus and Delete when no record has the id.
// Malformed ids are reported the same way.
var ErrNotFound = apierror.ErrNotFound

// Repository is the contact record store.
type Repository interface {
	// Insert stores c, assigns c.ID and returns it.
	Insert(ctx context.Context, c *contact.Contact) (string, error)
	// List returns records matching f, newest first. limit <= 0 means no limit.
	// SourceIP and UserAgent are never populated.
	List(ctx context.Context, f contact.Filter, skip, limit int64) ([]*contact.Contact, error)
	Count(ctx context.Context, f contact.Filter) (int64, error)
	// UpdateStatus sets the status and returns the updated record.
	UpdateStatus(ctx context.Context, id string, s contact.Status) (*contact.Contact, error)
	Delete(ctx context.Context, id string) error
	// Stats counts records per status and those created at or after since.
	Stats(ctx context.Context, since time.Time) (contact.Stats, error)
	Ping(ctx context.Context) error
}
