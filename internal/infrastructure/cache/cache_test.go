package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenCache(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips a token", func(t *testing.T) {
		c := NewMemoryTokenCache()
		require.NoError(t, c.Set(ctx, "tok-1", time.Minute))

		token, err := c.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
	})

	t.Run("empty cache yields no token", func(t *testing.T) {
		c := NewMemoryTokenCache()
		token, err := c.Get(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("clear forces re-authentication", func(t *testing.T) {
		c := NewMemoryTokenCache()
		require.NoError(t, c.Set(ctx, "tok-1", time.Minute))
		require.NoError(t, c.Clear(ctx))

		token, err := c.Get(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("expired token yields no token", func(t *testing.T) {
		c := NewMemoryTokenCache()
		require.NoError(t, c.Set(ctx, "tok-1", time.Millisecond))
		time.Sleep(5 * time.Millisecond)

		token, err := c.Get(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)
	})
}

func TestMemoryLease(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire of a held lease fails", func(t *testing.T) {
		l := NewMemoryLease()

		acquired, err := l.Acquire(ctx, "catalog", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)

		acquired, err = l.Acquire(ctx, "catalog", time.Minute)
		require.NoError(t, err)
		assert.False(t, acquired)
	})

	t.Run("operations lease independently", func(t *testing.T) {
		l := NewMemoryLease()

		acquired, err := l.Acquire(ctx, "catalog", time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		acquired, err = l.Acquire(ctx, "order-export", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})

	t.Run("release frees the lease", func(t *testing.T) {
		l := NewMemoryLease()

		acquired, err := l.Acquire(ctx, "catalog", time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)
		require.NoError(t, l.Release(ctx, "catalog"))

		acquired, err = l.Acquire(ctx, "catalog", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})

	t.Run("expired lease can be re-acquired", func(t *testing.T) {
		l := NewMemoryLease()
		now := time.Now()
		l.clock = func() time.Time { return now }

		acquired, err := l.Acquire(ctx, "catalog", time.Minute)
		require.NoError(t, err)
		require.True(t, acquired)

		l.clock = func() time.Time { return now.Add(2 * time.Minute) }
		acquired, err = l.Acquire(ctx, "catalog", time.Minute)
		require.NoError(t, err)
		assert.True(t, acquired)
	})
}
