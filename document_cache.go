package xpgo

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"
)

// DocumentCache keeps decoded documents for long-running programs that load
// the same art repeatedly. It is safe for concurrent use.
//
// Files are keyed by path, which is assumed to identify its content; byte
// payloads are keyed by "sha256:" and the hex digest. Once maxSize entries
// are held, adding one evicts the least recently used.
//
// Callers share cached documents. A Document is immutable, so each caller
// flattens onto its own Surface without further locking.
type DocumentCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front is most recently used
	maxSize int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry struct {
	key  string
	doc  *Document
	size int64
}

var defaultCache = NewDocumentCache(100)

// NewDocumentCache returns a cache holding at most maxSize documents.
// maxSize <= 0 means unbounded.
func NewDocumentCache(maxSize int) *DocumentCache {
	return &DocumentCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
	}
}

// LoadDocumentCached is LoadDocument through the default cache.
func LoadDocumentCached(path string) (*Document, error) {
	return defaultCache.LoadDocument(path)
}

// ParseDocumentCached is ParseDocumentBytes through the default cache.
func ParseDocumentCached(data []byte) (*Document, error) {
	return defaultCache.ParseDocument(data)
}

// LoadDocument returns the cached document for path, loading it on a miss.
// Failed loads are not cached.
func (c *DocumentCache) LoadDocument(path string) (*Document, error) {
	return c.through(path, func() (*Document, error) { return LoadDocument(path) })
}

// ParseDocument returns the cached document for data, decoding it on a miss.
func (c *DocumentCache) ParseDocument(data []byte) (*Document, error) {
	sum := sha256.Sum256(data)
	key := "sha256:" + hex.EncodeToString(sum[:])
	return c.through(key, func() (*Document, error) { return ParseDocumentBytes(data) })
}

// through looks key up and falls back to load. Concurrent misses on one key
// may both load; the first stored result wins and is returned to both.
func (c *DocumentCache) through(key string, load func() (*Document, error)) (*Document, error) {
	if doc, ok := c.get(key); ok {
		return doc, nil
	}

	doc, err := load()
	if err != nil {
		return nil, err
	}
	return c.put(key, doc), nil
}

func (c *DocumentCache) get(key string) (*Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.order.MoveToFront(el)
	c.hits.Add(1)
	return el.Value.(*cacheEntry).doc, true
}

// put stores doc under key unless another goroutine got there first, and
// returns whichever document is cached.
func (c *DocumentCache) put(key string, doc *Document) *Document {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).doc
	}

	if c.maxSize > 0 {
		for c.order.Len() >= c.maxSize {
			c.evictOldest()
		}
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, doc: doc, size: estimateDocumentSize(doc)})
	return doc
}

// evictOldest drops the back of the LRU list. Callers hold mu.
func (c *DocumentCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).key)
	c.evictions.Add(1)
}

// Clear empties the cache. Counters are kept.
func (c *DocumentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Stats returns a snapshot of the cache counters.
func (c *DocumentCache) Stats() CacheStats {
	c.mu.Lock()
	var bytes int64
	for el := c.order.Front(); el != nil; el = el.Next() {
		bytes += el.Value.(*cacheEntry).size
	}
	size := c.order.Len()
	c.mu.Unlock()

	return CacheStats{
		Size:      size,
		Bytes:     bytes,
		MaxSize:   c.maxSize,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// CacheStats is a point-in-time view of a DocumentCache.
type CacheStats struct {
	Size      int   // documents held
	Bytes     int64 // approximate memory held by those documents
	MaxSize   int   // capacity, <= 0 for unbounded
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits as a percentage of lookups, 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) * 100 / float64(total)
}

// estimateDocumentSize approximates the heap held by d.
func estimateDocumentSize(d *Document) int64 {
	const (
		docOverhead   = 64
		layerOverhead = 48
		cellSize      = 12 // rune + two colors
	)
	if d == nil {
		return 0
	}
	size := int64(docOverhead)
	for _, l := range d.layers {
		size += layerOverhead + int64(len(l.cells))*cellSize
	}
	return size
}

// SetDefaultCacheSize replaces the default cache with an empty one of the
// given capacity. Call it during startup, before concurrent use.
func SetDefaultCacheSize(maxSize int) {
	defaultCache = NewDocumentCache(maxSize)
}

// ClearDefaultCache empties the default cache.
func ClearDefaultCache() {
	defaultCache.Clear()
}

// DefaultCacheStats returns the default cache's counters.
func DefaultCacheStats() CacheStats {
	return defaultCache.Stats()
}
