package stanza

import (
	"database/sql"
	"errors"
	"sync"
)

// ErrNotFound is returned when a requested post or fragment does not exist.
var ErrNotFound = sql.ErrNoRows

// RenderCache layers an in-memory map over the SQLite fragment store so a
// rebuild only re-renders bodies that actually changed. A broken store never
// fails a build; the cache just degrades to memory-only for the rest of the
// process.
type RenderCache struct {
	mu       sync.RWMutex
	memory   map[string]fragment
	store    *Store
	degraded bool
}

type fragment struct {
	hash string
	html string
}

// NewRenderCache creates a RenderCache backed by the given Store. A nil
// store yields a memory-only cache.
func NewRenderCache(s *Store) *RenderCache {
	return &RenderCache{memory: make(map[string]fragment), store: s}
}

// Get returns the cached HTML for source if the body hash still matches.
// It tries a read lock on the memory layer first and only falls through to
// SQLite on a miss.
func (c *RenderCache) Get(source string, body []byte) (string, bool) {
	hash := HashBytes(body)

	c.mu.RLock()
	if f, ok := c.memory[source]; ok && f.hash == hash {
		c.mu.RUnlock()
		return f.html, true
	}
	c.mu.RUnlock()

	if c.store == nil || c.isDegraded() {
		return "", false
	}
	html, err := c.store.GetFragment(source, hash)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.degrade()
		}
		return "", false
	}
	c.mu.Lock()
	c.memory[source] = fragment{hash: hash, html: html}
	c.mu.Unlock()
	return html, true
}

// Put records freshly rendered HTML for source in both layers.
func (c *RenderCache) Put(source string, body []byte, html string) {
	hash := HashBytes(body)
	c.mu.Lock()
	c.memory[source] = fragment{hash: hash, html: html}
	c.mu.Unlock()

	if c.store == nil || c.isDegraded() {
		return
	}
	if err := c.store.PutFragment(source, hash, html); err != nil {
		c.degrade()
	}
}

// Invalidate drops the cached fragment for source so the next build renders
// it fresh.
func (c *RenderCache) Invalidate(source string) {
	c.mu.Lock()
	delete(c.memory, source)
	c.mu.Unlock()

	if c.store == nil || c.isDegraded() {
		return
	}
	if err := c.store.DeleteFragment(source); err != nil {
		c.degrade()
	}
}

// Prune evicts fragments whose source file is gone. Returns the number of
// persisted rows removed.
func (c *RenderCache) Prune(live map[string]struct{}) int {
	c.mu.Lock()
	for source := range c.memory {
		if _, ok := live[source]; !ok {
			delete(c.memory, source)
		}
	}
	c.mu.Unlock()

	if c.store == nil || c.isDegraded() {
		return 0
	}
	n, err := c.store.Prune(live)
	if err != nil {
		c.degrade()
		return 0
	}
	return n
}

func (c *RenderCache) isDegraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.degraded
}

func (c *RenderCache) degrade() {
	c.mu.Lock()
	c.degraded = true
	c.mu.Unlock()
}
