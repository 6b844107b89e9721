// Package cache maps document fingerprints to normalization and chunking
// results so repeated requests skip acquisition and extraction.
//
// The cache is process-wide state: empty at startup, unbounded for the
// process lifetime, no teardown. Entries hold chunk text (bounded by the
// upload limit), so growth tracks the number of distinct documents seen; a
// bounded LRU keyed by fingerprint is the natural strengthening if that
// becomes a problem.
package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/MileWhile/Auramax/internal/chunker"
)

// Entry is a cached normalization result: either chunked text or a
// native-ingestion blob.
type Entry struct {
	DocumentName string
	MIME         string
	Chunks       []chunker.Chunk
	Native       bool
	Blob         []byte
	BlobMIME     string
}

// Cache is a fingerprint-keyed store with a single-flight guarantee: two
// concurrent requests for the same uncached fingerprint run the compute
// function once and share its result.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	group   singleflight.Group
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]*Entry),
	}
}

// Get returns the cached entry for a fingerprint, if present.
func (c *Cache) Get(fingerprint string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[fingerprint]
	return e, ok
}

// GetOrCompute returns the cached entry for the fingerprint, computing and
// storing it on a miss. The returned bool reports whether this was a cache
// hit; a caller deduplicated into another caller's in-flight computation
// also reports a hit, since it reused work rather than running its own.
// Failed computations are not stored.
func (c *Cache) GetOrCompute(fingerprint string, compute func() (*Entry, error)) (*Entry, bool, error) {
	if e, ok := c.Get(fingerprint); ok {
		return e, true, nil
	}

	hit := true
	v, err, _ := c.group.Do(fingerprint, func() (interface{}, error) {
		// Re-check under the flight: a previous flight may have
		// populated the entry between the Get above and here.
		if e, ok := c.Get(fingerprint); ok {
			return e, nil
		}
		hit = false
		e, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[fingerprint] = e
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Entry), hit, nil
}

// Len reports the number of cached fingerprints.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
