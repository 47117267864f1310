package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCacheDecimals(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()
	key := DecimalsCacheKey(369, "0xABC")
	assert.Equal(t, "decimals:369:0xabc", key)

	_, ok, err := c.GetDecimals(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetDecimals(ctx, key, 6, 0))
	d, ok, err := c.GetDecimals(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint8(6), d)

	require.NoError(t, c.Delete(ctx, key))
	_, ok, _ = c.GetDecimals(ctx, key)
	assert.False(t, ok)
}

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	require.NoError(t, c.SetDecimals(ctx, "k", 8, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.GetDecimals(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
