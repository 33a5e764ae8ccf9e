package index

import (
	"strconv"
	"sync/atomic"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache remembers recent Search results keyed by lowercased term and limit.
// A nil or disabled Cache misses on every lookup.
type Cache struct {
	lru    *lru.Cache[string, []Tag]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache holding up to size result sets.
func NewCache(size int) *Cache {
	if size <= 0 {
		return &Cache{}
	}
	c, err := lru.New[string, []Tag](size)
	if err != nil {
		log.Warnf("Result cache disabled: %v", err)
		return &Cache{}
	}
	return &Cache{lru: c}
}

func cacheKey(term string, limit int) string {
	return strconv.Itoa(limit) + "\x00" + term
}

// Get returns a copy of the cached result set.
func (c *Cache) Get(term string, limit int) ([]Tag, bool) {
	if c == nil || c.lru == nil {
		return nil, false
	}
	tags, ok := c.lru.Get(cacheKey(term, limit))
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out, true
}

// Add stores a copy of tags.
func (c *Cache) Add(term string, limit int, tags []Tag) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(cacheKey(term, limit), append([]Tag(nil), tags...))
}

// Purge drops every entry. Called whenever the index changes.
func (c *Cache) Purge() {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Purge()
}

// Stats returns hit/miss counters and the current entry count.
func (c *Cache) Stats() map[string]int {
	if c == nil || c.lru == nil {
		return map[string]int{"cacheEntries": 0, "cacheHits": 0, "cacheMisses": 0}
	}
	return map[string]int{
		"cacheEntries": c.lru.Len(),
		"cacheHits":    int(c.hits.Load()),
		"cacheMisses":  int(c.misses.Load()),
	}
}
