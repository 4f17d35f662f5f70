package cache

import (
	"sync"
	"time"

	"docquery/internal/domain"
)

// DocumentCache maps a document reference to its chunks so repeated requests
// for the same document skip download, extraction and chunking. It is
// bounded: least-recently-used entries are evicted past maxSize, and entries
// expire after the TTL. The reference string is the sole key, so distinct
// content served at one URL behaves as a single entry.
type DocumentCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	chunks    []domain.Chunk
	timestamp time.Time
}

func NewDocumentCache(maxSize int, ttl time.Duration) *DocumentCache {
	if maxSize <= 0 {
		maxSize = 64
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &DocumentCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get returns the cached chunks for a document reference.
func (c *DocumentCache) Get(ref string) ([]domain.Chunk, bool) {
	c.mu.RLock()
	entry, exists := c.entries[ref]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.entries, ref)
		c.removeFromOrder(ref)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.moveToEnd(ref)
	c.mu.Unlock()

	return entry.chunks, true
}

// Put stores the chunks for a document reference, evicting the oldest entry
// when the cache is full.
func (c *DocumentCache) Put(ref string, chunks []domain.Chunk) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[ref]; exists {
		c.entries[ref] = &cacheEntry{chunks: chunks, timestamp: time.Now()}
		c.moveToEnd(ref)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[ref] = &cacheEntry{chunks: chunks, timestamp: time.Now()}
	c.order = append(c.order, ref)
}

// Size returns the number of cached documents.
func (c *DocumentCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Refs lists the cached document references, oldest first.
func (c *DocumentCache) Refs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	refs := make([]string, len(c.order))
	copy(refs, c.order)
	return refs
}

// Clear drops every entry.
func (c *DocumentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}

func (c *DocumentCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *DocumentCache) moveToEnd(ref string) {
	c.removeFromOrder(ref)
	c.order = append(c.order, ref)
}

func (c *DocumentCache) removeFromOrder(ref string) {
	for i, k := range c.order {
		if k == ref {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
