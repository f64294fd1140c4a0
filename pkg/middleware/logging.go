// Package middleware provides decorators for numsvc.Service: structured logging,
// OpenTelemetry tracing and OpenTelemetry metrics. Compose them with
// numsvc.ApplyMiddleware.
package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyp3rd/numsvc"
	"github.com/hyp3rd/numsvc/pkg/compute"
	"github.com/hyp3rd/numsvc/pkg/stats"
)

// LoggingMiddleware logs each call and the time it took at debug level. Rejected inputs are
// client errors and are logged at debug too.
// Must implement the numsvc.Service interface.
type LoggingMiddleware struct {
	next   numsvc.Service
	logger zerolog.Logger
}

// NewLoggingMiddleware returns a new LoggingMiddleware.
func NewLoggingMiddleware(next numsvc.Service, logger zerolog.Logger) numsvc.Service {
	return &LoggingMiddleware{next: next, logger: logger.With().Str("component", "service").Logger()}
}

// Stats logs the series length and the time the call took.
func (mw *LoggingMiddleware) Stats(ctx context.Context, values []float64) compute.StatsResult {
	defer func(begin time.Time) {
		mw.logger.Debug().Str("method", "Stats").Int("count", len(values)).Dur("took", time.Since(begin)).Msg("call")
	}(time.Now())

	return mw.next.Stats(ctx, values)
}

// Factorize logs the input, the number of factors and the time the call took.
func (mw *LoggingMiddleware) Factorize(ctx context.Context, n int64) ([]int64, error) {
	begin := time.Now()
	factors, err := mw.next.Factorize(ctx, n)

	if err != nil {
		mw.logger.Debug().Str("method", "Factorize").Int64("n", n).Err(err).Msg("call rejected")

		return factors, err
	}

	mw.logger.Debug().
		Str("method", "Factorize").
		Int64("n", n).
		Int("factors", len(factors)).
		Dur("took", time.Since(begin)).
		Msg("call")

	return factors, nil
}

// CacheStats passes through.
func (mw *LoggingMiddleware) CacheStats() stats.Stats {
	return mw.next.CacheStats()
}
