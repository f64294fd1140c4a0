package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyp3rd/numsvc"
	"github.com/hyp3rd/numsvc/internal/telemetry/attrs"
	"github.com/hyp3rd/numsvc/pkg/compute"
	"github.com/hyp3rd/numsvc/pkg/stats"
)

// OTelTracingMiddleware wraps numsvc.Service methods with OpenTelemetry spans.
type OTelTracingMiddleware struct {
	next   numsvc.Service
	tracer trace.Tracer
	// static attributes applied to all spans
	commonAttrs []attribute.KeyValue
}

// OTelTracingOption allows configuring the tracing middleware.
type OTelTracingOption func(*OTelTracingMiddleware)

// WithCommonAttributes sets attributes applied to all spans.
func WithCommonAttributes(attributes ...attribute.KeyValue) OTelTracingOption {
	return func(m *OTelTracingMiddleware) { m.commonAttrs = append(m.commonAttrs, attributes...) }
}

// NewOTelTracingMiddleware creates a tracing middleware.
func NewOTelTracingMiddleware(next numsvc.Service, tracer trace.Tracer, opts ...OTelTracingOption) numsvc.Service {
	mw := &OTelTracingMiddleware{next: next, tracer: tracer}
	for _, o := range opts {
		o(mw)
	}

	return mw
}

// Stats implements Service.Stats with tracing.
func (mw *OTelTracingMiddleware) Stats(ctx context.Context, values []float64) compute.StatsResult {
	ctx, span := mw.startSpan(ctx, "numsvc.Stats", attribute.Int(attrs.AttrValuesCount, len(values)))
	defer span.End()

	return mw.next.Stats(ctx, values)
}

// Factorize implements Service.Factorize with tracing. Rejections mark the span as failed.
func (mw *OTelTracingMiddleware) Factorize(ctx context.Context, n int64) ([]int64, error) {
	ctx, span := mw.startSpan(ctx, "numsvc.Factorize", attribute.Int64(attrs.AttrInput, n))
	defer span.End()

	factors, err := mw.next.Factorize(ctx, n)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return factors, err
	}

	span.SetAttributes(attribute.Int(attrs.AttrFactorsCount, len(factors)))

	return factors, nil
}

// CacheStats passes through without a span.
func (mw *OTelTracingMiddleware) CacheStats() stats.Stats { return mw.next.CacheStats() }

// startSpan starts a span with common and provided attributes.
func (mw *OTelTracingMiddleware) startSpan(ctx context.Context, name string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := mw.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	if len(mw.commonAttrs) > 0 {
		span.SetAttributes(mw.commonAttrs...)
	}

	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}

	return ctx, span
}
