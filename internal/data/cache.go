package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"stock-backtest/internal/model"
)

// CacheEntry represents one cached symbol series
type CacheEntry struct {
	Bars      []model.Bar
	ExpiresAt time.Time
}

// SeriesCache provides in-memory caching of parsed CSV series so repeated
// API backtests over the same datasets do not re-read and re-parse files.
// Entries expire by TTL rather than watching file modification times, so a
// dataset updated on disk can be served stale for up to one TTL.
type SeriesCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
}

var globalCache *SeriesCache
var cacheOnce sync.Once

// GetCache returns the global series cache if caching is enabled via
// ENABLE_DATA_CACHE=true. Returns nil otherwise; a nil cache is safe to use
// and behaves as a permanent miss.
func GetCache() *SeriesCache {
	if os.Getenv("ENABLE_DATA_CACHE") != "true" {
		return nil
	}

	cacheOnce.Do(func() {
		ttl := 1 * time.Hour // Default TTL: 1 hour
		if ttlStr := os.Getenv("DATA_CACHE_TTL"); ttlStr != "" {
			if parsed, err := time.ParseDuration(ttlStr); err == nil {
				ttl = parsed
			}
		}

		globalCache = &SeriesCache{
			store: make(map[string]*CacheEntry),
			ttl:   ttl,
		}

		// Start cleanup goroutine
		go globalCache.cleanup()
	})

	return globalCache
}

// Get retrieves a cached series if available and not expired
func (c *SeriesCache) Get(key string) ([]model.Bar, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}

	return entry.Bars, true
}

// Set stores a series in the cache
func (c *SeriesCache) Set(key string, bars []model.Bar) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &CacheEntry{
		Bars:      bars,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

// Clear removes all entries from the cache
func (c *SeriesCache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry)
}

// cleanup periodically removes expired entries
func (c *SeriesCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, entry := range c.store {
			if now.After(entry.ExpiresAt) {
				delete(c.store, key)
			}
		}
		c.mu.Unlock()
	}
}

// CacheKey creates a cache key for one dataset file
func CacheKey(dir, symbol string) string {
	keyStr := fmt.Sprintf("%s:%s", dir, symbol)

	// Hash the key to keep it reasonably sized
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}

// LoadSeriesCached is LoadSeriesCSV through the global cache. With caching
// disabled it degrades to a plain load.
func LoadSeriesCached(dir, symbol, path string) ([]model.Bar, error) {
	cache := GetCache()
	key := CacheKey(dir, symbol)
	if bars, ok := cache.Get(key); ok {
		return bars, nil
	}
	bars, err := LoadSeriesCSV(path)
	if err != nil {
		return nil, err
	}
	cache.Set(key, bars)
	return bars, nil
}
