package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyQuantizesCoordinates(t *testing.T) {
	c := NewAddressCache()

	key := c.CacheKey(45.51234, -122.67891)
	assert.Equal(t, "45.5123,-122.6789", key)

	// Lookups a few metres apart share an entry
	assert.Equal(t, key, c.CacheKey(45.512341, -122.678905))
}

func TestAddressCacheHitAndMiss(t *testing.T) {
	c := NewAddressCache()
	key := c.CacheKey(45.52, -122.68)

	_, found := c.Get(key)
	assert.False(t, found)

	want := &Address{FormattedAddress: "701 SW 6th Ave, Portland, OR"}
	c.Set(key, want)

	got, found := c.Get(key)
	require.True(t, found)
	assert.Equal(t, want, got)

	stats := c.GetStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}

func TestAddressCacheExpiry(t *testing.T) {
	c := NewAddressCache()
	key := c.CacheKey(45.52, -122.68)
	c.Set(key, &Address{FormattedAddress: "somewhere"})

	// Age the entry past the TTL
	c.mutex.Lock()
	c.cache[key].CreatedAt = time.Now().Add(-25 * time.Hour)
	c.mutex.Unlock()

	_, found := c.Get(key)
	assert.False(t, found)

	stats := c.GetStats()
	assert.Equal(t, int64(1), stats["evictions"])
}

func TestAddressCacheEvictsOldestWhenFull(t *testing.T) {
	c := NewAddressCache()
	c.maxEntries = 2

	c.Set("first", &Address{FormattedAddress: "first"})
	c.Set("second", &Address{FormattedAddress: "second"})

	// Touch "first" so "second" becomes the least recently used
	_, found := c.Get("first")
	require.True(t, found)

	c.Set("third", &Address{FormattedAddress: "third"})

	_, found = c.Get("second")
	assert.False(t, found)
	_, found = c.Get("first")
	assert.True(t, found)
	_, found = c.Get("third")
	assert.True(t, found)
}

func TestAddressCacheConcurrentAccess(t *testing.T) {
	c := NewAddressCache()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", n, j%10)
				c.Set(key, &Address{FormattedAddress: key})
				c.Get(key)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	stats := c.GetStats()
	assert.Positive(t, stats["hits"])
}
