package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowStore counts hits per key in fixed windows that start at the key's
// first hit. Hit returns the count including this hit and when the window ends.
type WindowStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

type windowEntry struct {
	count int64
	start time.Time
}

// MemoryWindowStore keeps counters in process. Expired entries are pruned
// lazily on access.
type MemoryWindowStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
	lastGC  time.Time
}

func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{entries: make(map[string]*windowEntry), now: time.Now}
}

// WithClock replaces time.Now.
func (m *MemoryWindowStore) WithClock(now func() time.Time) *MemoryWindowStore {
	m.now = now
	return m
}

func (m *MemoryWindowStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if now.Sub(m.lastGC) >= window {
		for k, e := range m.entries {
			if !now.Before(e.start.Add(window)) {
				delete(m.entries, k)
			}
		}
		m.lastGC = now
	}
	e, ok := m.entries[key]
	if !ok || !now.Before(e.start.Add(window)) {
		e = &windowEntry{start: now}
		m.entries[key] = e
	}
	e.count++
	return e.count, e.start.Add(window), nil
}

// Len reports the number of tracked keys.
func (m *MemoryWindowStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// RedisWindowStore shares counters between instances. The key expires
// PEXPIRE after the first INCR, which is where the window starts.
type RedisWindowStore struct {
	client *redis.Client
	prefix string
}

// NewRedisWindowStore creates a Redis-backed WindowStore. Prefix may be empty.
func NewRedisWindowStore(client *redis.Client, prefix string) *RedisWindowStore {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisWindowStore{client: client, prefix: prefix}
}

func (r *RedisWindowStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	k := r.prefix + key
	n, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("incr %s: %w", k, err)
	}
	ttl := window
	if n == 1 {
		if err := r.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("pexpire %s: %w", k, err)
		}
	} else {
		ttl, err = r.client.PTTL(ctx, k).Result()
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("pttl %s: %w", k, err)
		}
		// a key without expiry would never reset
		if ttl <= 0 {
			ttl = window
			if err := r.client.PExpire(ctx, k, window).Err(); err != nil {
				return 0, time.Time{}, fmt.Errorf("pexpire %s: %w", k, err)
			}
		}
	}
	return n, time.Now().Add(ttl), nil
}
