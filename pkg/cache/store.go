// Copyright 2025 The Kube Resource Orchestrator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"). You may
// not use this file except in compliance with the License. A copy of the
// License is located at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// or in the "license" file accompanying this file. This file is distributed
// on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
// express or implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package cache implements the keyed conversion-result store and parsed-AST
// store spec §4.8 describes, backed by an expirable LRU for the count and
// time-to-live bounds with an additional approximate-memory bound layered on
// top.
package cache

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/exp/maps"
)

// Sizer estimates the approximate byte footprint of a stored value, used to
// enforce the approximate-memory bound.
type Sizer[V any] func(V) int

// StoreConfig configures one Store's eviction bounds and background
// cleanup.
type StoreConfig struct {
	MaxEntries      int
	TTL             time.Duration
	MaxMemoryBytes  int64
	CleanupInterval time.Duration
}

type entry[V any] struct {
	value V
	size  int
}

// Counters is one Store's instrumentation snapshot (spec §4.8).
type Counters struct {
	Hits                    int64
	Misses                  int64
	Evictions               int64
	TotalRequests           int64
	CumulativeRetrievalTime time.Duration
}

// HitRatio returns Hits / (Hits + Misses), or 0 when there have been no
// requests yet.
func (c Counters) HitRatio() float64 {
	total := c.Hits + c.Misses
	if total == 0 {
		return 0
	}
	return float64(c.Hits) / float64(total)
}

// KeySize pairs a key with its approximate stored size, for Breakdown.
type KeySize struct {
	Key   Key
	Bytes int
}

// Store is a single keyed cache over value type V: eviction by count, TTL
// (both delegated to the underlying expirable LRU), and approximate memory
// (enforced on top, since the LRU itself is size-blind).
type Store[V any] struct {
	lru   *lru.LRU[Key, entry[V]]
	sizer Sizer[V]

	maxMemoryBytes int64
	usedBytes      int64

	sizesMu sync.Mutex
	sizes   map[Key]int

	hits, misses, evictions, totalRequests int64
	retrievalNanos                         int64

	metrics *storeMetrics

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// NewStore constructs a Store. sizer estimates a value's footprint; metrics
// is optional (nil disables Prometheus instrumentation for this store).
func NewStore[V any](cfg StoreConfig, sizer Sizer[V], metrics *storeMetrics) *Store[V] {
	if sizer == nil {
		sizer = func(V) int { return 1 }
	}
	s := &Store[V]{
		sizer:          sizer,
		maxMemoryBytes: cfg.MaxMemoryBytes,
		sizes:          make(map[Key]int),
		metrics:        metrics,
	}
	s.lru = lru.NewLRU[Key, entry[V]](cfg.MaxEntries, s.onEvict, cfg.TTL)

	if cfg.CleanupInterval > 0 {
		s.stopCleanup = make(chan struct{})
		go s.runCleanup(cfg.CleanupInterval)
	}
	return s
}

// Get looks up key, recording a hit or miss and the retrieval latency.
func (s *Store[V]) Get(key Key) (V, bool) {
	start := time.Now()
	e, ok := s.lru.Get(key)
	atomic.AddInt64(&s.totalRequests, 1)
	atomic.AddInt64(&s.retrievalNanos, int64(time.Since(start)))

	if !ok {
		atomic.AddInt64(&s.misses, 1)
		if s.metrics != nil {
			s.metrics.misses.Inc()
		}
		var zero V
		return zero, false
	}
	atomic.AddInt64(&s.hits, 1)
	if s.metrics != nil {
		s.metrics.hits.Inc()
	}
	return e.value, true
}

// Put stores value under key. Only successful conversion results should
// ever reach Put; callers never cache an error result (spec §4.8).
func (s *Store[V]) Put(key Key, value V) {
	size := s.sizer(value)

	// Add on an existing key updates it in place without invoking onEvict,
	// so the old size has to be reconciled here or it leaks into usedBytes.
	s.sizesMu.Lock()
	if old, exists := s.sizes[key]; exists {
		atomic.AddInt64(&s.usedBytes, -int64(old))
	}
	s.sizes[key] = size
	s.sizesMu.Unlock()

	s.lru.Add(key, entry[V]{value: value, size: size})
	atomic.AddInt64(&s.usedBytes, int64(size))
	s.enforceMemoryBound()

	if s.metrics != nil {
		s.metrics.entries.Set(float64(s.lru.Len()))
		s.metrics.usedMemory.Set(float64(atomic.LoadInt64(&s.usedBytes)))
	}
}

// enforceMemoryBound evicts the least-recently-used entries, oldest first,
// until the approximate memory bound is satisfied (or nothing is left to
// evict).
func (s *Store[V]) enforceMemoryBound() {
	if s.maxMemoryBytes <= 0 {
		return
	}
	for atomic.LoadInt64(&s.usedBytes) > s.maxMemoryBytes {
		if _, _, ok := s.lru.RemoveOldest(); !ok {
			return
		}
	}
}

// onEvict is the expirable LRU's eviction callback: it fires for capacity
// evictions, TTL expiry, and explicit removal alike, so it is the single
// place usedBytes/evictions are reconciled.
func (s *Store[V]) onEvict(key Key, e entry[V]) {
	atomic.AddInt64(&s.usedBytes, -int64(e.size))
	atomic.AddInt64(&s.evictions, 1)

	s.sizesMu.Lock()
	delete(s.sizes, key)
	remaining := len(s.sizes)
	s.sizesMu.Unlock()

	// The LRU invokes this callback while holding its own lock, so the entry
	// count comes from sizes rather than from s.lru.Len().
	if s.metrics != nil {
		s.metrics.evictions.Inc()
		s.metrics.entries.Set(float64(remaining))
		s.metrics.usedMemory.Set(float64(atomic.LoadInt64(&s.usedBytes)))
	}
}

// Stats returns a snapshot of this Store's counters.
func (s *Store[V]) Stats() Counters {
	return Counters{
		Hits:                    atomic.LoadInt64(&s.hits),
		Misses:                  atomic.LoadInt64(&s.misses),
		Evictions:               atomic.LoadInt64(&s.evictions),
		TotalRequests:           atomic.LoadInt64(&s.totalRequests),
		CumulativeRetrievalTime: time.Duration(atomic.LoadInt64(&s.retrievalNanos)),
	}
}

// ApproxMemoryBytes returns the current running estimate of memory used by
// stored entries.
func (s *Store[V]) ApproxMemoryBytes() int64 {
	return atomic.LoadInt64(&s.usedBytes)
}

// Len returns the current entry count.
func (s *Store[V]) Len() int {
	return s.lru.Len()
}

// Breakdown returns each live key's approximate size, sorted by key for a
// deterministic report across runs.
func (s *Store[V]) Breakdown() []KeySize {
	s.sizesMu.Lock()
	keys := maps.Keys(s.sizes)
	out := make([]KeySize, 0, len(keys))
	for _, k := range keys {
		out = append(out, KeySize{Key: k, Bytes: s.sizes[k]})
	}
	s.sizesMu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (s *Store[V]) runCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.enforceMemoryBound()
		case <-s.stopCleanup:
			return
		}
	}
}

// Destroy stops any background cleanup goroutine and releases every stored
// entry. Safe to call once no concurrent analyses are using this store
// (spec §5's quiescence requirement).
func (s *Store[V]) Destroy() {
	s.cleanupOnce.Do(func() {
		if s.stopCleanup != nil {
			close(s.stopCleanup)
		}
	})
	s.lru.Purge()
}
