package middleware

import (
	"context"
	"time"

	"github.com/hyp3rd/ewrap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyp3rd/numsvc"
	"github.com/hyp3rd/numsvc/internal/telemetry/attrs"
	"github.com/hyp3rd/numsvc/pkg/compute"
	"github.com/hyp3rd/numsvc/pkg/stats"
)

// OTelMetricsMiddleware emits OpenTelemetry metrics for service methods.
type OTelMetricsMiddleware struct {
	next  numsvc.Service
	meter metric.Meter

	// instruments
	calls     metric.Int64Counter
	durations metric.Float64Histogram
}

// NewOTelMetricsMiddleware constructs a metrics middleware using the provided meter.
// It also registers observable gauges for the memo cache hits, misses and evictions.
func NewOTelMetricsMiddleware(next numsvc.Service, meter metric.Meter) (numsvc.Service, error) {
	calls, err := meter.Int64Counter("numsvc.calls")
	if err != nil {
		return nil, ewrap.Wrap(err, "create counter")
	}

	durations, err := meter.Float64Histogram("numsvc.duration.ms", metric.WithUnit("ms"))
	if err != nil {
		return nil, ewrap.Wrap(err, "create histogram")
	}

	mw := &OTelMetricsMiddleware{next: next, meter: meter, calls: calls, durations: durations}

	err = mw.observeCache()
	if err != nil {
		return nil, err
	}

	return mw, nil
}

// Stats implements Service.Stats with metrics.
func (mw *OTelMetricsMiddleware) Stats(ctx context.Context, values []float64) compute.StatsResult {
	start := time.Now()
	res := mw.next.Stats(ctx, values)
	mw.rec(ctx, "Stats", start, nil)

	return res
}

// Factorize implements Service.Factorize with metrics.
func (mw *OTelMetricsMiddleware) Factorize(ctx context.Context, n int64) ([]int64, error) {
	start := time.Now()
	factors, err := mw.next.Factorize(ctx, n)
	mw.rec(ctx, "Factorize", start, err)

	return factors, err
}

// CacheStats returns stats.
func (mw *OTelMetricsMiddleware) CacheStats() stats.Stats { return mw.next.CacheStats() }

// observeCache exports the memo counters as observable instruments read at collection time.
func (mw *OTelMetricsMiddleware) observeCache() error {
	hits, err := mw.meter.Int64ObservableCounter("numsvc.cache.hits")
	if err != nil {
		return ewrap.Wrap(err, "create cache hits counter")
	}

	misses, err := mw.meter.Int64ObservableCounter("numsvc.cache.misses")
	if err != nil {
		return ewrap.Wrap(err, "create cache misses counter")
	}

	evictions, err := mw.meter.Int64ObservableCounter("numsvc.cache.evictions")
	if err != nil {
		return ewrap.Wrap(err, "create cache evictions counter")
	}

	size, err := mw.meter.Int64ObservableGauge("numsvc.cache.entries")
	if err != nil {
		return ewrap.Wrap(err, "create cache entries gauge")
	}

	_, err = mw.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		st := mw.next.CacheStats()
		o.ObserveInt64(hits, int64(st.Hits))           //nolint:gosec
		o.ObserveInt64(misses, int64(st.Misses))       //nolint:gosec
		o.ObserveInt64(evictions, int64(st.Evictions)) //nolint:gosec
		o.ObserveInt64(size, int64(st.Len))

		return nil
	}, hits, misses, evictions, size)
	if err != nil {
		return ewrap.Wrap(err, "register cache callback")
	}

	return nil
}

// rec records call count and duration. Only method and outcome become attributes,
// so the number of series stays fixed whatever the inputs.
func (mw *OTelMetricsMiddleware) rec(ctx context.Context, method string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}

	base := []attribute.KeyValue{attribute.String(attrs.AttrMethod, method), attribute.String(attrs.AttrOutcome, outcome)}

	mw.calls.Add(ctx, 1, metric.WithAttributes(base...))
	mw.durations.Record(ctx, float64(time.Since(start).Microseconds())/1000, metric.WithAttributes(base...))
}
