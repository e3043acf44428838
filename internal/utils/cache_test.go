package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	c, err := NewTTLCache[string, int](4, time.Minute)
	require.NoError(t, err)

	now := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestTTLCacheZeroTTLNeverExpires(t *testing.T) {
	c, err := NewTTLCache[uint, string](2, 0)
	require.NoError(t, err)

	c.Set(1, "alice")
	c.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
}

func TestTTLCacheEvictsAndDeletes(t *testing.T) {
	c, err := NewTTLCache[int, int](2, time.Hour)
	require.NoError(t, err)

	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)
	_, ok := c.Get(1)
	assert.False(t, ok, "oldest entry should be evicted")

	c.Delete(2)
	_, ok = c.Get(2)
	assert.False(t, ok)

	c.Purge()
	_, ok = c.Get(3)
	assert.False(t, ok)
}
