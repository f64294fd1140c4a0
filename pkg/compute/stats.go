// Package compute holds the two numeric operations served by numsvc:
// descriptive statistics over a series of numbers and memoized prime
// factorization of non-negative integers.
package compute

import (
	"math"
	"slices"
)

// StatsResult summarizes a numeric series.
type StatsResult struct {
	Count  int     `json:"count"  msgpack:"count"  codec:"count"`
	Mean   float64 `json:"mean"   msgpack:"mean"   codec:"mean"`
	Median float64 `json:"median" msgpack:"median" codec:"median"`
	Stdev  float64 `json:"stdev"  msgpack:"stdev"  codec:"stdev"`
}

// Summarize computes count, mean, median and sample standard deviation of values.
// An empty series yields the zero result; a single value is its own mean and median.
// Stdev is 0 whenever fewer than two values are given. values is not modified.
func Summarize(values []float64) StatsResult {
	n := len(values)

	switch n {
	case 0:
		return StatsResult{}
	case 1:
		return StatsResult{Count: 1, Mean: values[0], Median: values[0]}
	}

	mean := Mean(values)

	return StatsResult{
		Count:  n,
		Mean:   mean,
		Median: Median(values),
		Stdev:  sampleStdev(values, mean),
	}
}

// Mean returns the arithmetic mean of values, or 0 for an empty series.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	n := float64(len(values))

	var sum float64
	for _, v := range values {
		sum += v
	}

	if !math.IsInf(sum, 0) {
		return sum / n
	}

	// The plain sum overflowed: add pre-divided terms, each bounded by MaxFloat64/n.
	var mean float64
	for _, v := range values {
		mean += v / n
	}

	return mean
}

// Median returns the middle value of the sorted series, averaging the two middle
// values when the length is even. It returns 0 for an empty series.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}

	// Halving first keeps the midpoint finite at either end of the float64 range.
	return sorted[mid-1]/2 + sorted[mid]/2
}

// sampleStdev uses Bessel's correction (divisor n-1). Requires len(values) >= 2.
// Deviations are scaled by the largest magnitude in the series so neither the
// differences nor their squares overflow.
func sampleStdev(values []float64, mean float64) float64 {
	var scale float64
	for _, v := range values {
		scale = math.Max(scale, math.Abs(v))
	}

	if scale == 0 {
		return 0
	}

	scaledMean := mean / scale

	var squares float64
	for _, v := range values {
		d := v/scale - scaledMean
		squares += d * d
	}

	return math.Sqrt(squares/float64(len(values)-1)) * scale
}
