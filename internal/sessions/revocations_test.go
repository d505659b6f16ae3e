package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRevoker_RevokeAndExpire(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	r := NewRedisRevoker(client, "test:revoked:")
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(2*time.Second)))
	require.True(t, m.Exists("test:revoked:jti-1"))

	ok, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, ok)

	// advance miniredis clock past TTL
	m.FastForward(3 * time.Second)

	ok, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisRevoker_AlreadyExpiredIsNoop(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	r := NewRedisRevoker(redis.NewClient(&redis.Options{Addr: m.Addr()}), "")
	require.NoError(t, r.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	require.False(t, m.Exists("revoked:access:old"))
}

func TestRedisRevoker_ServerDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	r := NewRedisRevoker(redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1}), "")
	m.Close()

	_, err = r.IsRevoked(context.Background(), "jti")
	require.Error(t, err)
}

func TestMemoryRevoker(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewMemoryRevoker()
	r.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, r.Revoke(ctx, "b", now.Add(-time.Minute)))

	ok, err := r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	ok, _ = r.IsRevoked(ctx, "b")
	require.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = r.IsRevoked(ctx, "a")
	require.False(t, ok)
	require.Empty(t, r.revoked)
}
