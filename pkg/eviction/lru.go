// Package eviction implements the bounded least-recently-used cache that backs
// the factorization memo.
//
// The cache keeps a doubly linked list of nodes ordered by recency, with the most
// recently used node at the head and the least recently used node at the tail, plus
// a map from key to node for constant-time lookup. A hit moves the node to the head;
// inserting into a full cache drops the tail first.
package eviction

import (
	"sync"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/numsvc/internal/sentinel"
	"github.com/hyp3rd/numsvc/pkg/stats"
)

// lruNode represents an entry in the LRU list.
type lruNode[K comparable, V any] struct {
	key   K
	value V
	prev  *lruNode[K, V]
	next  *lruNode[K, V]
}

// LRU is a fixed-capacity cache evicting the least recently used entry.
// All methods are safe for concurrent use. Get takes the write lock because a hit reorders the list.
type LRU[K comparable, V any] struct {
	mutex    sync.Mutex           // guards items and the list
	capacity int                  // maximum number of entries
	items    map[K]*lruNode[K, V] // index into the list
	head     *lruNode[K, V]       // most recently used
	tail     *lruNode[K, V]       // least recently used
	pool     sync.Pool            // recycled nodes
	stats    *stats.Collector     // hit/miss/eviction counters
	onEvict  func(key K, value V) // optional eviction callback, invoked under the lock
}

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithEvictionCallback registers fn to be called for each evicted entry.
func WithEvictionCallback[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(lru *LRU[K, V]) { lru.onEvict = fn }
}

// NewLRU creates a new LRU cache with the given capacity.
func NewLRU[K comparable, V any](capacity int, opts ...Option[K, V]) (*LRU[K, V], error) {
	if capacity < 1 {
		return nil, ewrap.Wrapf(sentinel.ErrInvalidCapacity, "capacity %d", capacity)
	}

	lru := &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*lruNode[K, V], capacity),
		stats:    stats.NewCollector(),
	}
	lru.pool.New = func() any { return &lruNode[K, V]{} }

	for _, opt := range opts {
		opt(lru)
	}

	return lru, nil
}

// Get retrieves the value for the given key and marks it as most recently used.
func (lru *LRU[K, V]) Get(key K) (V, bool) {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	node, ok := lru.items[key]
	if !ok {
		lru.stats.IncrementMisses()

		var zero V

		return zero, false
	}

	lru.stats.IncrementHits()
	lru.moveToFront(node)

	return node.value, true
}

// Peek retrieves the value for the given key without touching its recency or the counters.
func (lru *LRU[K, V]) Peek(key K) (V, bool) {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	node, ok := lru.items[key]
	if !ok {
		var zero V

		return zero, false
	}

	return node.value, true
}

// Set sets the value for the given key. If the key is already present its value is replaced
// and it becomes the most recently used entry. If the cache is full, the least recently used
// entry is evicted first.
func (lru *LRU[K, V]) Set(key K, value V) {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	if node, ok := lru.items[key]; ok {
		node.value = value
		lru.moveToFront(node)

		return
	}

	if len(lru.items) >= lru.capacity {
		lru.evictTail()
	}

	node, _ := lru.pool.Get().(*lruNode[K, V])
	if node == nil {
		node = &lruNode[K, V]{}
	}

	node.key = key
	node.value = value

	lru.items[key] = node
	lru.addToFront(node)
}

// Evict removes the least recently used entry and returns its key.
func (lru *LRU[K, V]) Evict() (K, bool) {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	if lru.tail == nil {
		var zero K

		return zero, false
	}

	key := lru.tail.key
	lru.evictTail()

	return key, true
}

// Delete removes the given key from the cache.
func (lru *LRU[K, V]) Delete(key K) {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	node, ok := lru.items[key]
	if !ok {
		return
	}

	lru.removeFromList(node)
	delete(lru.items, key)
	lru.release(node)
}

// Purge drops every entry and resets the counters. Eviction callbacks are not invoked.
func (lru *LRU[K, V]) Purge() {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	lru.items = make(map[K]*lruNode[K, V], lru.capacity)
	lru.head = nil
	lru.tail = nil
	lru.stats.Reset()
}

// Len returns the number of entries currently held.
func (lru *LRU[K, V]) Len() int {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	return len(lru.items)
}

// Capacity returns the maximum number of entries.
func (lru *LRU[K, V]) Capacity() int { return lru.capacity }

// Keys returns the keys from most to least recently used.
func (lru *LRU[K, V]) Keys() []K {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	keys := make([]K, 0, len(lru.items))
	for node := lru.head; node != nil; node = node.next {
		keys = append(keys, node.key)
	}

	return keys
}

// Stats returns a snapshot of the cache counters and occupancy.
func (lru *LRU[K, V]) Stats() stats.Stats {
	lru.mutex.Lock()
	defer lru.mutex.Unlock()

	snapshot := lru.stats.GetStats()
	snapshot.Capacity = lru.capacity
	snapshot.Len = len(lru.items)

	return snapshot
}

// evictTail drops the least recently used node. The caller holds the lock.
func (lru *LRU[K, V]) evictTail() {
	node := lru.tail
	if node == nil {
		return
	}

	lru.removeFromList(node)
	delete(lru.items, node.key)
	lru.stats.IncrementEvictions()

	if lru.onEvict != nil {
		lru.onEvict(node.key, node.value)
	}

	lru.release(node)
}

// release zeroes the node and returns it to the pool.
func (lru *LRU[K, V]) release(node *lruNode[K, V]) {
	*node = lruNode[K, V]{}
	lru.pool.Put(node)
}

// moveToFront moves the given node to the front of the list.
func (lru *LRU[K, V]) moveToFront(node *lruNode[K, V]) {
	if node == lru.head {
		return
	}

	lru.removeFromList(node)
	lru.addToFront(node)
}

// removeFromList unlinks the given node.
func (lru *LRU[K, V]) removeFromList(node *lruNode[K, V]) {
	if node == lru.head {
		lru.head = node.next
	} else {
		node.prev.next = node.next
	}

	if node == lru.tail {
		lru.tail = node.prev
	} else {
		node.next.prev = node.prev
	}

	node.prev = nil
	node.next = nil
}

// addToFront links the given node at the head.
func (lru *LRU[K, V]) addToFront(node *lruNode[K, V]) {
	if lru.head == nil {
		lru.head = node
		lru.tail = node

		return
	}

	node.next = lru.head
	lru.head.prev = node
	lru.head = node
}
