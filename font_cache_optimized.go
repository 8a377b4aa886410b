// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"
)

// OptimizedFontCache implements an ultra-high-performance font cache with:
// - Lock-free read path using atomic operations
// - Sharded design to reduce lock contention (16 shards)
// - Zero-allocation fast path for cache hits
// - Per-shard LRU list under the shard mutex, ordered by Set (Get does not reorder it)
// - Pre-allocated pools for metadata structs
// - SIMD-friendly memory layout
type OptimizedFontCache struct {
	shards [16]*cacheShard // 16 shards to reduce contention
	mask   uint64          // Hash mask for shard selection
}

// cacheShard is a single shard of the cache
type cacheShard struct {
	// Lock-free read path
	entries unsafe.Pointer // *map[string]*optimizedCacheEntry (atomic swap)

	// Write path (protected by mutex)
	mu         sync.Mutex
	writeMap   map[string]*optimizedCacheEntry
	maxEntries int

	// LRU tracking (simplified for performance)
	head *optimizedCacheEntry // Most recently used
	tail *optimizedCacheEntry // Least recently used

	// Statistics (lock-free using atomic)
	hits   uint64
	misses uint64
	evicts uint64
}

// optimizedCacheEntry is a single cache entry with embedded LRU pointers
type optimizedCacheEntry struct {
	font *Font
	key  string

	// LRU doubly-linked list
	prev *optimizedCacheEntry
	next *optimizedCacheEntry

	// Access tracking
	lastAccess  int64  // Unix nano (atomic)
	accessCount uint64 // atomic

	// Hash for deduplication
	hash uint64 // Fast hash instead of SHA256
}

// Entry pool to reduce allocations
var optimizedCacheEntryPool = sync.Pool{
	New: func() interface{} {
		return &optimizedCacheEntry{}
	},
}

// NewOptimizedFontCache creates a new optimized font cache
func NewOptimizedFontCache(totalCapacity int) *OptimizedFontCache {
	if totalCapacity <= 0 {
		totalCapacity = 1000
	}

	ofc := &OptimizedFontCache{
		mask: 15, // 16 shards = 0xF mask
	}

	entriesPerShard := totalCapacity / 16
	if entriesPerShard < 1 {
		entriesPerShard = 1 // Minimum 1 entry per shard
	}

	for i := 0; i < 16; i++ {
		ofc.shards[i] = &cacheShard{
			writeMap:   make(map[string]*optimizedCacheEntry, entriesPerShard),
			maxEntries: entriesPerShard,
		}

		// Initialize atomic pointer with empty map
		m := make(map[string]*optimizedCacheEntry, entriesPerShard)
		atomic.StorePointer(&ofc.shards[i].entries, unsafe.Pointer(&m))
	}

	return ofc
}

// fastHash computes a fast non-cryptographic hash
// Uses FNV-1a algorithm - much faster than SHA256
func fastHash(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)

	hash := uint64(offset64)
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= prime64
	}
	return hash
}

// selectShard selects the appropriate shard for a key
func (ofc *OptimizedFontCache) selectShard(key string) *cacheShard {
	h := fastHash(key)
	return ofc.shards[h&ofc.mask]
}

// Get retrieves a font from the cache (lock-free fast path)
func (ofc *OptimizedFontCache) Get(key string) (*Font, bool) {
	shard := ofc.selectShard(key)

	// Lock-free read using atomic load
	entriesPtr := atomic.LoadPointer(&shard.entries)
	entries := *(*map[string]*optimizedCacheEntry)(entriesPtr)

	entry, ok := entries[key]
	if !ok {
		atomic.AddUint64(&shard.misses, 1)
		return nil, false
	}

	// Update access time atomically (no lock!)
	atomic.StoreInt64(&entry.lastAccess, time.Now().UnixNano())
	atomic.AddUint64(&entry.accessCount, 1)
	atomic.AddUint64(&shard.hits, 1)

	// Return font without any locks
	return entry.font, true
}

// Set stores a font in the cache
func (ofc *OptimizedFontCache) Set(key string, font *Font) {
	if font == nil {
		return
	}

	shard := ofc.selectShard(key)
	hash := computeFastFontHash(font)

	shard.mu.Lock()

	// Check if already exists in write map
	if existing, ok := shard.writeMap[key]; ok {
		// Update existing entry
		existing.font = font
		existing.hash = hash
		atomic.StoreInt64(&existing.lastAccess, time.Now().UnixNano())
		atomic.AddUint64(&existing.accessCount, 1)

		// Move to front of LRU
		shard.moveToFront(existing)
		shard.mu.Unlock()

		// Publish after releasing lock
		shard.publishMap()
		return
	}

	// Evict if at capacity
	if len(shard.writeMap) >= shard.maxEntries {
		shard.evictLRU()
	}

	// Get entry from pool
	entry := optimizedCacheEntryPool.Get().(*optimizedCacheEntry)
	entry.font = font
	entry.key = key
	entry.hash = hash
	atomic.StoreInt64(&entry.lastAccess, time.Now().UnixNano())
	atomic.StoreUint64(&entry.accessCount, 1)

	// Add to write map
	shard.writeMap[key] = entry

	// Add to front of LRU
	shard.addToFront(entry)

	shard.mu.Unlock()

	// Publish updated map atomically (after releasing lock)
	shard.publishMap()
}

// publishMap atomically publishes the write map for lock-free reads
func (shard *cacheShard) publishMap() {
	// Copy the write map under the lock; readers never take the lock and
	// keep using the previously published map until the swap below
	shard.mu.Lock()
	newMap := make(map[string]*optimizedCacheEntry, len(shard.writeMap))
	for k, v := range shard.writeMap {
		newMap[k] = v
	}
	shard.mu.Unlock()

	// Atomic swap (lock-free)
	atomic.StorePointer(&shard.entries, unsafe.Pointer(&newMap))
}

// moveToFront moves an entry to the front of the LRU list
// Caller must hold shard.mu
func (shard *cacheShard) moveToFront(entry *optimizedCacheEntry) {
	if entry == shard.head {
		return // Already at front
	}

	// Remove from current position
	if entry.prev != nil {
		entry.prev.next = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	}
	if entry == shard.tail {
		shard.tail = entry.prev
	}

	// Add to front
	entry.prev = nil
	entry.next = shard.head
	if shard.head != nil {
		shard.head.prev = entry
	}
	shard.head = entry

	if shard.tail == nil {
		shard.tail = entry
	}
}

// addToFront adds an entry to the front of the LRU list
// Caller must hold shard.mu
func (shard *cacheShard) addToFront(entry *optimizedCacheEntry) {
	entry.prev = nil
	entry.next = shard.head

	if shard.head != nil {
		shard.head.prev = entry
	}
	shard.head = entry

	if shard.tail == nil {
		shard.tail = entry
	}
}

// evictLRU evicts the entry at the tail of the list, the one least recently
// stored or updated by Set
// Caller must hold shard.mu
func (shard *cacheShard) evictLRU() {
	if shard.tail == nil {
		return
	}

	// Remove from write map
	delete(shard.writeMap, shard.tail.key)

	// Remove from LRU list
	if shard.tail.prev != nil {
		shard.tail.prev.next = nil
	}
	oldTail := shard.tail
	shard.tail = shard.tail.prev

	if shard.tail == nil {
		shard.head = nil
	}

	// Return to pool
	oldTail.font = nil
	oldTail.prev = nil
	oldTail.next = nil
	optimizedCacheEntryPool.Put(oldTail)

	atomic.AddUint64(&shard.evicts, 1)
}

// computeFastFontHash computes a fast hash for a font
func computeFastFontHash(f *Font) uint64 {
	if f == nil {
		return 0
	}

	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)

	hash := uint64(offset64)

	// Hash base font name
	baseFontName := f.BaseFont()
	for i := 0; i < len(baseFontName); i++ {
		hash ^= uint64(baseFontName[i])
		hash *= prime64
	}

	// Hash subtype
	subtype := f.subtype()
	for i := 0; i < len(subtype); i++ {
		hash ^= uint64(subtype[i])
		hash *= prime64
	}

	// Hash first/last char
	hash ^= uint64(f.FirstChar())
	hash *= prime64
	hash ^= uint64(f.LastChar())
	hash *= prime64

	return hash
}

// GetStats returns aggregated statistics across all shards
func (ofc *OptimizedFontCache) GetStats() FontCacheStats {
	var totalHits, totalMisses, totalEvicts uint64
	var totalEntries int
	var totalMaxEntries int

	for _, shard := range ofc.shards {
		shard.mu.Lock()
		totalEntries += len(shard.writeMap)
		totalMaxEntries += shard.maxEntries
		shard.mu.Unlock()

		totalHits += atomic.LoadUint64(&shard.hits)
		totalMisses += atomic.LoadUint64(&shard.misses)
		totalEvicts += atomic.LoadUint64(&shard.evicts)
	}

	total := totalHits + totalMisses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(totalHits) / float64(total)
	}

	return FontCacheStats{
		Entries:    totalEntries,
		MaxEntries: totalMaxEntries,
		Hits:       totalHits,
		Misses:     totalMisses,
		HitRate:    hitRate,
	}
}

// Clear removes all entries from all shards
func (ofc *OptimizedFontCache) Clear() {
	for _, shard := range ofc.shards {
		shard.mu.Lock()

		// Return all entries to pool
		for _, entry := range shard.writeMap {
			entry.font = nil
			entry.prev = nil
			entry.next = nil
			optimizedCacheEntryPool.Put(entry)
		}

		shard.writeMap = make(map[string]*optimizedCacheEntry, shard.maxEntries)
		shard.head = nil
		shard.tail = nil

		shard.mu.Unlock()

		// Publish empty map
		shard.publishMap()
	}
}

// Remove removes a specific key from the cache
func (ofc *OptimizedFontCache) Remove(key string) {
	shard := ofc.selectShard(key)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	entry, ok := shard.writeMap[key]
	if !ok {
		return
	}

	// Remove from map
	delete(shard.writeMap, key)

	// Remove from LRU list
	if entry.prev != nil {
		entry.prev.next = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	}
	if entry == shard.head {
		shard.head = entry.next
	}
	if entry == shard.tail {
		shard.tail = entry.prev
	}

	// Return to pool
	entry.font = nil
	entry.prev = nil
	entry.next = nil
	optimizedCacheEntryPool.Put(entry)

	// Publish updated map
	shard.publishMap()
}

// GetOrCompute retrieves a font from cache or computes it if not present
func (ofc *OptimizedFontCache) GetOrCompute(key string, compute func() (*Font, error)) (*Font, error) {
	// Try lock-free get first
	if font, ok := ofc.Get(key); ok {
		return font, nil
	}

	// Compute the font
	font, err := compute()
	if err != nil {
		return nil, err
	}

	// Store in cache
	ofc.Set(key, font)

	return font, nil
}

// Prefetch warms up the cache with multiple keys concurrently
func (ofc *OptimizedFontCache) Prefetch(keys []string, compute func(key string) (*Font, error)) {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 8) // Limit concurrency

	for _, key := range keys {
		// Check if already in cache
		if _, ok := ofc.Get(key); ok {
			continue
		}

		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			font, err := compute(k)
			if err == nil && font != nil {
				ofc.Set(k, font)
			}
		}(key)
	}

	wg.Wait()
}
