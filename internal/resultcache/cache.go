// Package resultcache is the calling layer's result cache. The optimization
// engine itself never caches: it is deterministic and side-effect free, so
// the server layer keys results by (identity, input-hash) and bounds their
// lifetime with a TTL.
package resultcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL-bounded in-memory result cache, safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Key derives a stable cache key from the caller identity and the full
// request parameters. Two requests hash equal only if every parameter,
// including the distribution samples, is identical.
func Key(identity string, params any) string {
	h := sha256.New()
	h.Write([]byte(identity))
	h.Write([]byte{0})
	enc, _ := json.Marshal(params)
	h.Write(enc)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached value for key if it has not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Put stores value under key for the cache's TTL.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}

	// Opportunistic sweep keeps the map from accumulating dead entries
	// between hits on expired keys.
	if len(c.entries) > 1024 {
		now := c.now()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
