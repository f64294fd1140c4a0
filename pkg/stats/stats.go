// Package stats collects memo cache statistics.
package stats

import "sync"

// Stats contains memo cache statistics.
type Stats struct {
	Capacity  int    `json:"capacity"  msgpack:"capacity"  codec:"capacity"`  // maximum number of entries
	Len       int    `json:"len"       msgpack:"len"       codec:"len"`       // current number of entries
	Hits      uint64 `json:"hits"      msgpack:"hits"      codec:"hits"`      // number of lookups answered from the cache
	Misses    uint64 `json:"misses"    msgpack:"misses"    codec:"misses"`    // number of lookups that had to compute
	Evictions uint64 `json:"evictions" msgpack:"evictions" codec:"evictions"` // number of entries dropped to admit new ones
}

// HitRatio returns hits / (hits + misses), or 0 when nothing was looked up.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// Collector is a struct for collecting cache statistics.
type Collector struct {
	mu    sync.RWMutex // mutex to protect concurrent access to the stats
	stats Stats        // cache statistics
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// IncrementHits increments the number of cache hits.
func (c *Collector) IncrementHits() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Hits++
}

// IncrementMisses increments the number of cache misses.
func (c *Collector) IncrementMisses() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Misses++
}

// IncrementEvictions increments the number of cache evictions.
func (c *Collector) IncrementEvictions() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Evictions++
}

// Reset zeroes every counter.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats = Stats{}
}

// GetStats returns the counters. Capacity and Len are left for the owner to fill in.
func (c *Collector) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.stats
}
