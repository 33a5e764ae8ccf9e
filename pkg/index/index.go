// Package index keeps known tag names in a patricia trie for prefix lookups.
package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Order selects how Search ranks matching tags.
type Order int

const (
	// ByName sorts matches alphabetically.
	ByName Order = iota
	// ByUses sorts matches by use count, most used first, then by name.
	ByUses
)

// ParseOrder maps a config value to an Order. Unknown values fall back to ByName.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), "uses") {
		return ByUses
	}
	return ByName
}

// Tag is one indexed tag name.
type Tag struct {
	ID   int64
	Name string
	Uses int
}

// Index answers prefix queries over tag names. Names are matched
// case-insensitively; the stored display name is the first one seen.
type Index struct {
	trie  *patricia.Trie
	cache *Cache
	order Order
	size  int
	mu    sync.RWMutex
}

// New creates an empty index. cacheSize <= 0 disables result caching.
func New(order Order, cacheSize int) *Index {
	return &Index{
		trie:  patricia.NewTrie(),
		cache: NewCache(cacheSize),
		order: order,
	}
}

// Add inserts a tag, or merges its use count into an existing entry.
func (ix *Index) Add(tag Tag) {
	key := strings.ToLower(strings.TrimSpace(tag.Name))
	if key == "" {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if item := ix.trie.Get(patricia.Prefix(key)); item != nil {
		existing := item.(*Tag)
		existing.Uses += tag.Uses
		if tag.ID != 0 {
			existing.ID = tag.ID
		}
	} else {
		stored := tag
		stored.Name = strings.TrimSpace(tag.Name)
		ix.trie.Insert(patricia.Prefix(key), &stored)
		ix.size++
	}
	ix.cache.Purge()
}

// AddAll inserts every tag of tags.
func (ix *Index) AddAll(tags []Tag) {
	for _, t := range tags {
		ix.Add(t)
	}
	log.Debugf("Index holds %d tags", ix.Len())
}

// Len returns the number of distinct tags.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.size
}

// Search returns up to limit tags whose name starts with term.
// An empty term matches nothing. limit <= 0 means no limit.
func (ix *Index) Search(term string, limit int) []Tag {
	lowerTerm := strings.ToLower(term)
	if lowerTerm == "" {
		return []Tag{}
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if cached, ok := ix.cache.Get(lowerTerm, limit); ok {
		return cached
	}

	var matches []Tag
	err := ix.trie.VisitSubtree(patricia.Prefix(lowerTerm), func(p patricia.Prefix, item patricia.Item) error {
		tag, ok := item.(*Tag)
		if !ok {
			log.Errorf("Unknown item type: %T for tag %s", item, p)
			return nil
		}
		matches = append(matches, *tag)
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return []Tag{}
	}

	ix.sort(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = []Tag{}
	}

	// written under the read lock so a concurrent Add purges after us
	ix.cache.Add(lowerTerm, limit, matches)
	return matches
}

func (ix *Index) sort(tags []Tag) {
	switch ix.order {
	case ByUses:
		sort.SliceStable(tags, func(i, j int) bool {
			if tags[i].Uses != tags[j].Uses {
				return tags[i].Uses > tags[j].Uses
			}
			return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
		})
	default:
		sort.SliceStable(tags, func(i, j int) bool {
			return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
		})
	}
}

// Stats reports index and cache counters.
func (ix *Index) Stats() map[string]int {
	stats := map[string]int{
		"tags": ix.Len(),
	}
	for k, v := range ix.cache.Stats() {
		stats[k] = v
	}
	return stats
}
