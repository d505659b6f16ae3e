package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devfolio/portfolio/backend/internal/contact"
)

// MemoryRepo is an in-memory Repository used by tests and by
// STORE_DRIVER=memory for local runs. Ids use the ObjectID hex format so
// clients see the same shape as with MongoDB.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*contact.Contact
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*contact.Contact)}
}

var _ Repository = (*MemoryRepo)(nil)

func (m *MemoryRepo) Insert(_ context.Context, c *contact.Contact) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = primitive.NewObjectID().Hex()
	cp := *c
	m.store[c.ID] = &cp
	return c.ID, nil
}

// sorted returns the records matching f, newest first. Caller holds the lock.
func (m *MemoryRepo) sorted(f contact.Filter) []*contact.Contact {
	out := make([]*contact.Contact, 0, len(m.store))
	for _, c := range m.store {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func public(c *contact.Contact) *contact.Contact {
	cp := *c
	cp.SourceIP = ""
	cp.UserAgent = ""
	return &cp
}

func (m *MemoryRepo) List(_ context.Context, f contact.Filter, skip, limit int64) ([]*contact.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.sorted(f)
	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(all)) {
		return []*contact.Contact{}, nil
	}
	all = all[skip:]
	if limit > 0 && limit < int64(len(all)) {
		all = all[:limit]
	}
	out := make([]*contact.Contact, 0, len(all))
	for _, c := range all {
		out = append(out, public(c))
	}
	return out, nil
}

func (m *MemoryRepo) Count(_ context.Context, f contact.Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f.Status == "" {
		return int64(len(m.store)), nil
	}
	var n int64
	for _, c := range m.store {
		if c.Status == f.Status {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepo) UpdateStatus(_ context.Context, id string, s contact.Status) (*contact.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Status = s
	return public(c), nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepo) Stats(_ context.Context, since time.Time) (contact.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var st contact.Stats
	for _, c := range m.store {
		switch c.Status {
		case contact.StatusNew:
			st.New++
		case contact.StatusRead:
			st.Read++
		case contact.StatusReplied:
			st.Replied++
		}
		if !c.CreatedAt.Before(since) {
			st.LastWeek++
		}
	}
	st.Total = st.New + st.Read + st.Replied
	return st, nil
}

func (m *MemoryRepo) Ping(context.Context) error { return nil }

// Raw returns the stored record including SourceIP and UserAgent. Tests use
// it to check what was persisted.
func (m *MemoryRepo) Raw(id string) (*contact.Contact, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, false
	}
	cp := *c
	return &cp, true
}

// Len returns the number of stored records.
func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}
