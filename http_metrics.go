package numsvc

import (
	"context"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v3"
	"github.com/hyp3rd/ewrap"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyp3rd/numsvc/internal/telemetry/attrs"
)

// Latency buckets in seconds.
//
//nolint:gochecknoglobals
var latencyBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

const unmatchedEndpoint = "unmatched"

// requestObserver logs every request at debug level and, when a meter is set,
// records app_request_count and app_request_latency.
type requestObserver struct {
	logger zerolog.Logger

	// instruments, nil when metrics are disabled
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

func newRequestObserver(meter metric.Meter, logger zerolog.Logger, version string) (*requestObserver, error) {
	obs := &requestObserver{logger: logger}
	if meter == nil {
		return obs, nil
	}

	requests, err := meter.Int64Counter("app_request_count",
		metric.WithDescription("Total HTTP requests"))
	if err != nil {
		return nil, ewrap.Wrap(err, "create request counter")
	}

	latency, err := meter.Float64Histogram("app_request_latency",
		metric.WithDescription("Latency of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...))
	if err != nil {
		return nil, ewrap.Wrap(err, "create latency histogram")
	}

	info, err := meter.Int64Gauge("app_info",
		metric.WithDescription("Static metadata about the app (version=label)"))
	if err != nil {
		return nil, ewrap.Wrap(err, "create info gauge")
	}

	info.Record(context.Background(), 1, metric.WithAttributes(attribute.String(attrs.AttrVersion, version)))

	obs.requests = requests
	obs.latency = latency

	return obs, nil
}

// handle is the Fiber middleware. Errors returned by handlers have not been rendered yet
// when they reach it, so the status is derived with statusFor.
func (o *requestObserver) handle(fiberCtx fiber.Ctx) error {
	start := time.Now()
	err := fiberCtx.Next()
	elapsed := time.Since(start)

	status := fiberCtx.Response().StatusCode()
	if err != nil {
		status = statusFor(err)
	}

	endpoint := fiberCtx.Route().Path
	if status == fiber.StatusNotFound && err != nil {
		endpoint = unmatchedEndpoint
	}

	o.logger.Debug().
		Str("method", fiberCtx.Method()).
		Str("path", fiberCtx.Path()).
		Int("status", status).
		Dur("latency", elapsed).
		Msg("request")

	if o.requests != nil {
		ctx := fiberCtx.Context()

		o.requests.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrs.AttrHTTPMethod, fiberCtx.Method()),
			attribute.String(attrs.AttrEndpoint, endpoint),
			attribute.String(attrs.AttrHTTPStatus, strconv.Itoa(status)),
		))
		o.latency.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
			attribute.String(attrs.AttrEndpoint, endpoint),
		))
	}

	return err
}
