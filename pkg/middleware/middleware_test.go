package middleware

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/longbridgeapp/assert"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/hyp3rd/numsvc"
	"github.com/hyp3rd/numsvc/internal/sentinel"
	"github.com/hyp3rd/numsvc/pkg/compute"
)

func newCalculator(t *testing.T) *numsvc.Calculator {
	t.Helper()

	calc, err := numsvc.NewCalculator(compute.WithCacheSize(4))
	assert.Nil(t, err)

	return calc
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer

	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	svc := NewLoggingMiddleware(newCalculator(t), logger)

	res := svc.Stats(context.Background(), []float64{1, 2, 3})
	assert.Equal(t, 3, res.Count)

	factors, err := svc.Factorize(context.Background(), 12)
	assert.Nil(t, err)
	assert.Equal(t, []int64{2, 2, 3}, factors)

	_, err = svc.Factorize(context.Background(), -3)
	assert.True(t, errors.Is(err, sentinel.ErrInvalidArgument))

	out := buf.String()
	assert.True(t, strings.Contains(out, `"method":"Stats"`))
	assert.True(t, strings.Contains(out, `"factors":3`))
	assert.True(t, strings.Contains(out, `"message":"call rejected"`))
	assert.False(t, strings.Contains(out, `"level":"warn"`))
	assert.True(t, strings.Contains(out, `"component":"service"`))
}

func TestLoggingMiddleware_RejectionsStayOutOfWarnLog(t *testing.T) {
	var buf bytes.Buffer

	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	svc := NewLoggingMiddleware(newCalculator(t), logger)

	for n := int64(-1); n > -20; n-- {
		_, err := svc.Factorize(context.Background(), n)
		assert.True(t, errors.Is(err, sentinel.ErrInvalidArgument))
	}

	assert.Equal(t, "", buf.String())
}

func TestOTelTracingMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	defer func() { _ = provider.Shutdown(context.Background()) }()

	svc := NewOTelTracingMiddleware(newCalculator(t), provider.Tracer("test"),
		WithCommonAttributes(attribute.String("service", "numsvc")))

	svc.Stats(context.Background(), []float64{4, 5})

	_, err := svc.Factorize(context.Background(), 30)
	assert.Nil(t, err)

	_, err = svc.Factorize(context.Background(), -1)
	assert.True(t, err != nil)

	// CacheStats is not traced
	svc.CacheStats()

	spans := recorder.Ended()
	assert.Equal(t, 3, len(spans))
	assert.Equal(t, "numsvc.Stats", spans[0].Name())
	assert.Equal(t, "numsvc.Factorize", spans[1].Name())
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
	assert.Equal(t, codes.Error, spans[2].Status().Code)

	found := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[1].Attributes() {
		found[kv.Key] = kv.Value
	}

	assert.Equal(t, "numsvc", found["service"].AsString())
	assert.Equal(t, int64(30), found["input"].AsInt64())
	assert.Equal(t, int64(3), found["factors.count"].AsInt64())
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	assert.Nil(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}

	return out
}

func TestOTelMetricsMiddleware(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	defer func() { _ = provider.Shutdown(context.Background()) }()

	svc, err := NewOTelMetricsMiddleware(newCalculator(t), provider.Meter("test"))
	assert.Nil(t, err)

	svc.Stats(context.Background(), []float64{1})
	_, _ = svc.Factorize(context.Background(), 10)
	_, _ = svc.Factorize(context.Background(), 10)
	_, _ = svc.Factorize(context.Background(), -10)

	metrics := collect(t, reader)

	calls, ok := metrics["numsvc.calls"].Data.(metricdata.Sum[int64])
	assert.True(t, ok)

	byOutcome := map[string]int64{}

	for _, dp := range calls.DataPoints {
		method, _ := dp.Attributes.Value(attribute.Key("method"))
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		byOutcome[method.AsString()+"/"+outcome.AsString()] += dp.Value
	}

	assert.Equal(t, int64(1), byOutcome["Stats/ok"])
	assert.Equal(t, int64(2), byOutcome["Factorize/ok"])
	assert.Equal(t, int64(1), byOutcome["Factorize/error"])

	_, ok = metrics["numsvc.duration.ms"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)

	hits, ok := metrics["numsvc.cache.hits"].Data.(metricdata.Sum[int64])
	assert.True(t, ok)
	assert.Equal(t, int64(1), hits.DataPoints[0].Value)

	entries, ok := metrics["numsvc.cache.entries"].Data.(metricdata.Gauge[int64])
	assert.True(t, ok)
	assert.Equal(t, int64(1), entries.DataPoints[0].Value)
}

func TestOTelMetricsMiddleware_BoundedAttributes(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	defer func() { _ = provider.Shutdown(context.Background()) }()

	svc, err := NewOTelMetricsMiddleware(newCalculator(t), provider.Meter("test"))
	assert.Nil(t, err)

	values := []float64{}
	for i := range 50 {
		values = append(values, float64(i))
		svc.Stats(context.Background(), values)
	}

	metrics := collect(t, reader)

	calls, ok := metrics["numsvc.calls"].Data.(metricdata.Sum[int64])
	assert.True(t, ok)
	assert.Equal(t, 1, len(calls.DataPoints))
	assert.Equal(t, int64(50), calls.DataPoints[0].Value)
	assert.Equal(t, 2, calls.DataPoints[0].Attributes.Len())

	durations, ok := metrics["numsvc.duration.ms"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)
	assert.Equal(t, 1, len(durations.DataPoints))
	assert.Equal(t, 2, durations.DataPoints[0].Attributes.Len())
}

func TestApplyMiddlewareStack(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	svc := numsvc.ApplyMiddleware(newCalculator(t),
		func(next numsvc.Service) numsvc.Service { return NewLoggingMiddleware(next, zerolog.Nop()) },
		func(next numsvc.Service) numsvc.Service {
			mw, err := NewOTelMetricsMiddleware(next, provider.Meter("test"))
			assert.Nil(t, err)

			return mw
		},
	)

	factors, err := svc.Factorize(context.Background(), 97)
	assert.Nil(t, err)
	assert.Equal(t, []int64{97}, factors)
	assert.Equal(t, 1, svc.CacheStats().Len)
}
