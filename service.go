// Copyright 2023 F. All rights reserved.
// Use of this source code is governed by a Mozilla Public License 2.0
// license that can be found in the LICENSE file.

// Package numsvc serves descriptive statistics and memoized prime factorization
// over HTTP. The Service interface is the seam for middleware (logging, tracing,
// metrics); HTTPServer exposes a Service through Fiber.
package numsvc

import (
	"context"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/numsvc/internal/sentinel"
	"github.com/hyp3rd/numsvc/pkg/compute"
	"github.com/hyp3rd/numsvc/pkg/stats"
)

// Service is the service interface for the compute core.
// It enables middleware to be added to the service.
type Service interface {
	// Stats summarizes values. It never fails; an empty series yields the zero result.
	Stats(ctx context.Context, values []float64) compute.StatsResult
	// Factorize returns the ascending prime factors of n, or sentinel.ErrInvalidArgument when n < 0.
	Factorize(ctx context.Context, n int64) ([]int64, error)
	// CacheStats returns the factorization memo statistics.
	CacheStats() stats.Stats
}

// Middleware describes a service middleware.
type Middleware func(Service) Service

// ApplyMiddleware applies middlewares to a service.
// The last middleware given becomes the outermost layer.
func ApplyMiddleware(svc Service, mw ...Middleware) Service {
	for _, m := range mw {
		svc = m(svc)
	}

	return svc
}

// Calculator is the default Service. It owns the factorization memo through its Analyzer.
type Calculator struct {
	analyzer *compute.Analyzer
}

// NewCalculator builds a Calculator around a fresh Analyzer configured by opts.
func NewCalculator(opts ...compute.AnalyzerOption) (*Calculator, error) {
	analyzer, err := compute.NewAnalyzer(opts...)
	if err != nil {
		return nil, ewrap.Wrap(err, "create analyzer")
	}

	return &Calculator{analyzer: analyzer}, nil
}

// Stats implements Service.
func (*Calculator) Stats(_ context.Context, values []float64) compute.StatsResult {
	return compute.Summarize(values)
}

// Factorize implements Service. Negative inputs are rejected before the analyzer runs.
func (c *Calculator) Factorize(_ context.Context, n int64) ([]int64, error) {
	if n < 0 {
		return nil, ewrap.Wrapf(sentinel.ErrInvalidArgument, "n must be non-negative, got %d", n)
	}

	return c.analyzer.Factorize(n), nil
}

// CacheStats implements Service.
func (c *Calculator) CacheStats() stats.Stats {
	return c.analyzer.CacheStats()
}
