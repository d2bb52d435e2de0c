package services

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// AddressCache caches reverse-geocode lookups so repeated requests for the
// same bin or report location don't re-hit the paid API.
type AddressCache struct {
	cache      map[string]*addressCacheEntry
	mutex      sync.RWMutex
	maxEntries int
	ttl        time.Duration
	stats      addressCacheStats
}

type addressCacheEntry struct {
	Address      *Address
	CreatedAt    time.Time
	LastAccessed time.Time
	HitCount     int
}

type addressCacheStats struct {
	Hits         int64
	Misses       int64
	Evictions    int64
	TotalSavings float64 // Estimated API cost savings
	mutex        sync.RWMutex
}

// NewAddressCache creates a new address cache
func NewAddressCache() *AddressCache {
	cache := &AddressCache{
		cache:      make(map[string]*addressCacheEntry),
		maxEntries: 1000,
		ttl:        24 * time.Hour,
	}

	// Start cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// CacheKey quantizes coordinates to ~11m so nearby lookups share an entry.
func (c *AddressCache) CacheKey(lat, lng float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lng)
}

// Get retrieves a cached address if present and fresh
func (c *AddressCache) Get(key string) (*Address, bool) {
	c.mutex.RLock()
	entry, found := c.cache[key]
	c.mutex.RUnlock()

	if !found {
		c.recordMiss()
		return nil, false
	}

	// Check if expired
	if time.Since(entry.CreatedAt) > c.ttl {
		c.mutex.Lock()
		delete(c.cache, key)
		c.mutex.Unlock()
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}

	c.mutex.Lock()
	entry.LastAccessed = time.Now()
	entry.HitCount++
	c.mutex.Unlock()

	c.recordHit()
	return entry.Address, true
}

// Set stores an address in the cache
func (c *AddressCache) Set(key string, addr *Address) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Evict oldest entries if cache is full
	if len(c.cache) >= c.maxEntries {
		c.evictOldest()
	}

	c.cache[key] = &addressCacheEntry{
		Address:      addr,
		CreatedAt:    time.Now(),
		LastAccessed: time.Now(),
	}
}

// evictOldest removes the least recently used entry
func (c *AddressCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.cache {
		if oldestKey == "" || entry.LastAccessed.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastAccessed
		}
	}

	if oldestKey != "" {
		delete(c.cache, oldestKey)
		c.recordEviction()
		log.Printf("🗑️  Evicted oldest geocode cache entry: %s", oldestKey)
	}
}

// cleanupExpired periodically removes expired entries
func (c *AddressCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, entry := range c.cache {
			if now.Sub(entry.CreatedAt) > c.ttl {
				delete(c.cache, key)
				c.recordEviction()
			}
		}
		c.mutex.Unlock()
	}
}

func (c *AddressCache) recordHit() {
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()

	c.stats.Hits++
	// Each cache hit saves one API call ($5 per 1000 = $0.005)
	c.stats.TotalSavings += 0.005
}

func (c *AddressCache) recordMiss() {
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()

	c.stats.Misses++
}

func (c *AddressCache) recordEviction() {
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()

	c.stats.Evictions++
}

// GetStats returns cache statistics
func (c *AddressCache) GetStats() map[string]interface{} {
	c.stats.mutex.RLock()
	defer c.stats.mutex.RUnlock()

	c.mutex.RLock()
	cacheSize := len(c.cache)
	c.mutex.RUnlock()

	hitRate := 0.0
	total := c.stats.Hits + c.stats.Misses
	if total > 0 {
		hitRate = float64(c.stats.Hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"cache_size":    cacheSize,
		"max_entries":   c.maxEntries,
		"hits":          c.stats.Hits,
		"misses":        c.stats.Misses,
		"hit_rate":      fmt.Sprintf("%.2f%%", hitRate),
		"evictions":     c.stats.Evictions,
		"total_savings": fmt.Sprintf("$%.2f", c.stats.TotalSavings),
		"ttl_hours":     int(c.ttl.Hours()),
	}
}
