package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	value := []byte("payload")
	require.NoError(t, c.Set(ctx, "k", value, time.Minute))
	value[0] = 'X'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got), "stored value is a copy")
}

func TestMemoryClient_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "forever", []byte("2"), 0))

	now = now.Add(2 * time.Second)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))
}

func TestMemoryClient_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient()

	require.NoError(t, c.Set(ctx, Key("rules", "all"), []byte("a"), 0))
	require.NoError(t, c.Set(ctx, Key("rules", "category", "1"), []byte("b"), 0))
	require.NoError(t, c.Set(ctx, Key("other"), []byte("c"), 0))

	require.NoError(t, c.DeleteByPrefix(ctx, "rules:"))

	_, err := c.Get(ctx, "rules:all")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "rules:category:1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = c.Get(ctx, "other")
	assert.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "other"))
	_, err = c.Get(ctx, "other")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "rules:category:7", Key("rules", "category", "7"))
	assert.Equal(t, "", Key())
}
