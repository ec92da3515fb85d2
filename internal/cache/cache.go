// Package cache memoizes per-file extraction results keyed by content
// fingerprint. Two layers back it: an in-process LRU for the current run
// and a SQLite store that carries results across runs. Invalidation is
// purely content-hash based; identical content is never re-parsed.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/blackwell-systems/depprune/internal/extractor"
)

const defaultMemEntries = 4096

// Cache is the two-tier usage cache. Concurrent reads are safe during
// the scan phase; writes for the same fingerprint are idempotent because
// identical fingerprints imply identical content.
type Cache struct {
	mem   *lru.Cache[string, *extractor.Result]
	store *Store // nil when persistence is disabled
}

// New creates a cache backed by the SQLite store at dbPath. An empty
// dbPath disables the persistent tier.
func New(dbPath string) (*Cache, error) {
	mem, err := lru.New[string, *extractor.Result](defaultMemEntries)
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	c := &Cache{mem: mem}

	if dbPath != "" {
		store, err := OpenStore(dbPath)
		if err != nil {
			return nil, err
		}
		c.store = store
	}
	return c, nil
}

// Get returns the cached extraction result for a fingerprint, consulting
// the memory tier first and falling back to the persistent store.
func (c *Cache) Get(fingerprint string) (*extractor.Result, bool) {
	if res, ok := c.mem.Get(fingerprint); ok {
		return res, true
	}
	if c.store == nil {
		return nil, false
	}
	res, ok, err := c.store.Get(fingerprint)
	if err != nil || !ok {
		return nil, false
	}
	c.mem.Add(fingerprint, res)
	return res, true
}

// Put records an extraction result under its fingerprint in both tiers.
// Re-writing an existing fingerprint is a no-op at the store level.
func (c *Cache) Put(fingerprint string, res *extractor.Result) error {
	c.mem.Add(fingerprint, res)
	if c.store == nil {
		return nil
	}
	return c.store.Put(fingerprint, res)
}

// Close releases the persistent tier, if any.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
