package contact

import "time"

// Status is the review state of a submission. Any value may be set at any
// time by an admin; there is no enforced ordering.
type Status string

const (
	StatusNew     Status = "new"
	StatusRead    Status = "read"
	StatusReplied Status = "replied"
)

// StatusAll is the list filter value that disables status filtering.
const StatusAll = "todos"

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied:
		return true
	}
	return false
}

// Contact is one contact-form submission. SourceIP and UserAgent are stored
// for abuse review but never serialised to API clients.
type Contact struct {
	ID        string    `json:"id" bson:"-"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Company   string    `json:"company" bson:"company"`
	Message   string    `json:"message" bson:"message"`
	SourceIP  string    `json:"-" bson:"ip"`
	UserAgent string    `json:"-" bson:"userAgent,omitempty"`
	Status    Status    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Filter narrows list and count queries. Zero values match everything.
type Filter struct {
	Status Status
}

// Stats are aggregate counts over the whole collection. Total is always the
// sum of the three status counts.
type Stats struct {
	Total    int64 `json:"total"`
	New      int64 `json:"new"`
	Read     int64 `json:"read"`
	Replied  int64 `json:"replied"`
	LastWeek int64 `json:"lastWeek"`
}
