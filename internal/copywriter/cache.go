package copywriter

import (
	"sync"
	"time"
)

type cacheItem struct {
	text       string
	expiration int64
}

// ttlCache is a minimal expiring map. Expired entries are overwritten
// on the next set for the same key; there is no background sweep since
// the key space is bounded by the catalog size.
type ttlCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	ttl   time.Duration
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{items: make(map[string]cacheItem), ttl: ttl}
}

func (c *ttlCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, found := c.items[key]
	if !found || time.Now().UnixNano() > item.expiration {
		return "", false
	}
	return item.text, true
}

func (c *ttlCache) set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheItem{text: text, expiration: time.Now().Add(c.ttl).UnixNano()}
}
