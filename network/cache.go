package network

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// defaultFreshness applies to responses without max-age or Expires.
const defaultFreshness = 5 * time.Minute

// CacheEntry represents a cached HTTP response.
type CacheEntry struct {
	Response  *Response
	MaxAge    time.Duration
	HasMaxAge bool // max-age was present, including max-age=0
	Expires   time.Time
	CachedAt  time.Time
}

// IsExpired reports whether the entry is stale at now.
func (e *CacheEntry) IsExpired(now time.Time) bool {
	if e.HasMaxAge {
		return now.Sub(e.CachedAt) >= e.MaxAge
	}
	if !e.Expires.IsZero() {
		return now.After(e.Expires)
	}
	return now.Sub(e.CachedAt) > defaultFreshness
}

// Cache is an in-memory response cache keyed by absolute URL. When full,
// the oldest entry is evicted.
type Cache struct {
	entries map[string]*CacheEntry
	maxSize int
	now     func() time.Time
	mu      sync.RWMutex
}

// NewCache creates a new cache with the specified maximum number of entries.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Fresh returns the cached response for url when one exists and has not
// expired.
func (c *Cache) Fresh(url string) (*Response, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[url]
	if !ok || entry.IsExpired(c.now()) {
		return nil, false
	}
	return entry.Response, true
}

// Set stores resp under url unless its Cache-Control forbids storing.
func (c *Cache) Set(url string, resp *Response) {
	cacheControl := resp.Headers.Get("Cache-Control")
	directives := splitDirectives(cacheControl)
	if _, ok := directives["no-store"]; ok {
		return
	}

	entry := &CacheEntry{
		Response: resp,
		CachedAt: c.now(),
	}
	if v, ok := directives["max-age"]; ok {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			entry.MaxAge = time.Duration(seconds) * time.Second
			entry.HasMaxAge = true
		}
	}
	if _, ok := directives["no-cache"]; ok {
		entry.MaxAge, entry.HasMaxAge = 0, true
	}
	if !entry.HasMaxAge {
		if expires := resp.Headers.Get("Expires"); expires != "" {
			if t, err := http.ParseTime(expires); err == nil {
				entry.Expires = t
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[url]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[url] = entry
}

// Size returns the number of entries in the cache.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictOldest removes the oldest entry. Must be called with c.mu held.
func (c *Cache) evictOldest() {
	var oldestURL string
	var oldestTime time.Time

	for url, entry := range c.entries {
		if oldestURL == "" || entry.CachedAt.Before(oldestTime) {
			oldestURL = url
			oldestTime = entry.CachedAt
		}
	}

	if oldestURL != "" {
		delete(c.entries, oldestURL)
	}
}

// splitDirectives parses a Cache-Control value into lowercase directive
// names mapped to their (unquoted) values.
func splitDirectives(value string) map[string]string {
	directives := make(map[string]string)
	for _, d := range strings.Split(value, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		name, arg, _ := strings.Cut(d, "=")
		directives[strings.ToLower(strings.TrimSpace(name))] = strings.Trim(strings.TrimSpace(arg), `"`)
	}
	return directives
}
