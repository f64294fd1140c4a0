package compute

import (
	"slices"

	"github.com/hyp3rd/numsvc/internal/constants"
	"github.com/hyp3rd/numsvc/pkg/eviction"
	"github.com/hyp3rd/numsvc/pkg/stats"
)

// FactorCache is the memo used by Analyzer, keyed by the exact input.
type FactorCache = eviction.LRU[int64, []int64]

// NewFactorCache builds a memo holding at most capacity distinct inputs.
func NewFactorCache(capacity int) (*FactorCache, error) {
	return eviction.NewLRU[int64, []int64](capacity)
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithCache injects the memo cache, so callers can share or inspect it.
func WithCache(cache *FactorCache) AnalyzerOption {
	return func(a *Analyzer) { a.cache = cache }
}

// WithCacheSize sets the capacity of the memo built by NewAnalyzer.
// It is ignored when WithCache is also given.
func WithCacheSize(size int) AnalyzerOption {
	return func(a *Analyzer) { a.cacheSize = size }
}

// Analyzer factorizes non-negative integers by trial division and memoizes the results.
// It is safe for concurrent use; the memo serializes its own access.
type Analyzer struct {
	cache     *FactorCache
	cacheSize int
}

// NewAnalyzer returns an Analyzer. Without WithCache it owns a fresh memo of
// constants.DefaultFactorCacheSize entries (or the size given by WithCacheSize).
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	analyzer := &Analyzer{cacheSize: constants.DefaultFactorCacheSize}

	for _, opt := range opts {
		opt(analyzer)
	}

	if analyzer.cache == nil {
		cache, err := NewFactorCache(analyzer.cacheSize)
		if err != nil {
			return nil, err
		}

		analyzer.cache = cache
	}

	return analyzer, nil
}

// Factorize returns the prime factors of n in ascending order with multiplicity.
// Inputs <= 1 yield an empty, non-nil slice. The sign of n is not checked here.
// The returned slice is a copy and may be modified by the caller.
func (a *Analyzer) Factorize(n int64) []int64 {
	if n <= 1 {
		return []int64{}
	}

	if factors, ok := a.cache.Get(n); ok {
		return slices.Clone(factors)
	}

	factors := TrialDivision(n)
	a.cache.Set(n, factors)

	return slices.Clone(factors)
}

// CacheStats reports memo occupancy and hit/miss/eviction counters.
func (a *Analyzer) CacheStats() stats.Stats {
	return a.cache.Stats()
}

// TrialDivision factorizes n without memoization. Factors of two are stripped first,
// then odd candidates f are tried while f*f does not exceed the remaining value;
// each candidate is divided out completely before moving on. Whatever remains above
// one is itself prime.
func TrialDivision(n int64) []int64 {
	factors := []int64{}
	if n <= 1 {
		return factors
	}

	for n%2 == 0 {
		factors = append(factors, 2)
		n /= 2
	}

	// f <= n/f is f*f <= n without overflow.
	for f := int64(3); f <= n/f; f += 2 {
		for n%f == 0 {
			factors = append(factors, f)
			n /= f
		}
	}

	if n > 1 {
		factors = append(factors, n)
	}

	return factors
}
