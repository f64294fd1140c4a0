package eviction

import (
	"errors"
	"sync"
	"testing"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/numsvc/internal/sentinel"
)

func TestNewLRU_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		lru, err := NewLRU[int64, []int64](capacity)
		assert.True(t, lru == nil)
		assert.True(t, errors.Is(err, sentinel.ErrInvalidCapacity))
	}
}

func TestLRU_EvictsLeastRecentlyUsedOnSet(t *testing.T) {
	lru, err := NewLRU[string, int](2)
	if err != nil {
		t.Fatalf("NewLRU error: %v", err)
	}

	lru.Set("a", 1)
	lru.Set("b", 2)

	// Access "a" so that "b" becomes the least recently used
	if _, ok := lru.Get("a"); !ok {
		t.Fatalf("expected to get 'a'")
	}

	// Insert "c"; should evict "b"
	lru.Set("c", 3)
	if _, ok := lru.Get("b"); ok {
		t.Fatalf("expected 'b' to be evicted")
	}
	if _, ok := lru.Get("a"); !ok {
		t.Fatalf("expected 'a' to remain in cache")
	}
	if v, ok := lru.Get("c"); !ok || v != 3 {
		t.Fatalf("expected 'c'=3 in cache, got %v, ok=%v", v, ok)
	}
}

func TestLRU_EvictMethodOrder(t *testing.T) {
	lru, err := NewLRU[string, int](2)
	if err != nil {
		t.Fatalf("NewLRU error: %v", err)
	}

	lru.Set("a", 1)
	lru.Set("b", 2)

	// After two inserts, tail should be "a"
	key, ok := lru.Evict()
	if !ok || key != "a" {
		t.Fatalf("expected to evict 'a' first, got %q ok=%v", key, ok)
	}
	key, ok = lru.Evict()
	if !ok || key != "b" {
		t.Fatalf("expected to evict 'b' second, got %q ok=%v", key, ok)
	}

	_, ok = lru.Evict()
	assert.False(t, ok)
}

func TestLRU_UpdateRefreshesRecency(t *testing.T) {
	lru, err := NewLRU[string, int](2)
	assert.Nil(t, err)

	lru.Set("a", 1)
	lru.Set("b", 2)
	lru.Set("a", 10) // "b" is now the tail

	lru.Set("c", 3)

	_, ok := lru.Peek("b")
	assert.False(t, ok)

	v, ok := lru.Peek("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, []string{"c", "a"}, lru.Keys())
}

func TestLRU_CapacityOne(t *testing.T) {
	lru, err := NewLRU[int64, string](1)
	assert.Nil(t, err)

	lru.Set(1, "one")
	lru.Set(2, "two")

	assert.Equal(t, 1, lru.Len())

	_, ok := lru.Get(1)
	assert.False(t, ok)

	v, ok := lru.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestLRU_DeleteAndPurge(t *testing.T) {
	lru, err := NewLRU[string, int](3)
	assert.Nil(t, err)

	lru.Set("a", 1)
	lru.Set("b", 2)
	lru.Set("c", 3)

	lru.Delete("b")
	lru.Delete("missing")
	assert.Equal(t, []string{"c", "a"}, lru.Keys())

	lru.Delete("c") // head
	lru.Delete("a") // tail and last
	assert.Equal(t, 0, lru.Len())

	lru.Set("d", 4)
	_, _ = lru.Get("d")
	lru.Purge()

	assert.Equal(t, 0, lru.Len())
	assert.Equal(t, uint64(0), lru.Stats().Hits)

	lru.Set("e", 5)
	assert.Equal(t, []string{"e"}, lru.Keys())
}

func TestLRU_StatsAndCallback(t *testing.T) {
	var evicted []string

	lru, err := NewLRU(2, WithEvictionCallback(func(key string, _ int) {
		evicted = append(evicted, key)
	}))
	assert.Nil(t, err)

	lru.Set("a", 1)
	lru.Set("b", 2)
	lru.Set("c", 3)
	lru.Set("d", 4)

	_, _ = lru.Get("c")
	_, _ = lru.Get("a")

	st := lru.Stats()
	assert.Equal(t, 2, st.Capacity)
	assert.Equal(t, 2, st.Len)
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, uint64(2), st.Evictions)
	assert.Equal(t, []string{"a", "b"}, evicted)
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	lru, err := NewLRU[int, int](16)
	assert.Nil(t, err)

	var wg sync.WaitGroup
	for worker := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range 200 {
				key := (worker*200 + i) % 32
				lru.Set(key, i)
				_, _ = lru.Get(key)
			}
		}()
	}

	wg.Wait()

	assert.True(t, lru.Len() <= 16)
	assert.Equal(t, lru.Len(), len(lru.Keys()))
}
