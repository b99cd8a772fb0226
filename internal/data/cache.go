package data

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"
	"time"

	"agrivoltaics/internal/pipeline"
	"agrivoltaics/internal/solar"
)

type CacheEntry struct {
	Result    *pipeline.Result
	ExpiresAt time.Time
}

// ResultCache keeps finished evaluations in memory. A full-year estimate takes
// a noticeable fraction of a second and the API sees the same sites often.
//
// Enabled with ENABLE_RESULT_CACHE=true; RESULT_CACHE_TTL sets the lifetime
// (Go duration, default 1h).
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
}

var globalCache *ResultCache
var cacheOnce sync.Once

// GetCache returns the process-wide cache, or nil if caching is disabled.
// A nil *ResultCache is safe to use and never hits.
func GetCache() *ResultCache {
	if os.Getenv("ENABLE_RESULT_CACHE") != "true" {
		return nil
	}

	cacheOnce.Do(func() {
		ttl := time.Hour
		if ttlStr := os.Getenv("RESULT_CACHE_TTL"); ttlStr != "" {
			if parsed, err := time.ParseDuration(ttlStr); err == nil {
				ttl = parsed
			}
		}
		globalCache = NewResultCache(ttl)
		go globalCache.cleanup()
	})

	return globalCache
}

func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
	}
}

func (c *ResultCache) Get(key string) (*pipeline.Result, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[key]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Result, true
}

func (c *ResultCache) Set(key string, res *pipeline.Result) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &CacheEntry{
		Result:    res,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *ResultCache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry)
}

func (c *ResultCache) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, key)
		}
	}
}

func (c *ResultCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for now := range ticker.C {
		c.evictExpired(now)
	}
}

// CacheKey hashes everything that determines a result: the inputs and the
// model options.
func CacheKey(in pipeline.Inputs, opts solar.Options) (string, error) {
	raw, err := json.Marshal(struct {
		Inputs  pipeline.Inputs
		Options solar.Options
	}{in, opts})
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(raw)
	return hex.EncodeToString(hash[:]), nil
}
