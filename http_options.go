package numsvc

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyp3rd/numsvc/internal/libs/serializer"
)

// HTTPOption configures the HTTP server.
type HTTPOption func(*HTTPServer)

// BuildInfo identifies the running service on the version endpoint.
type BuildInfo struct {
	Name      string `json:"name"      msgpack:"name"      codec:"name"`
	Version   string `json:"version"   msgpack:"version"   codec:"version"`
	Env       string `json:"env"       msgpack:"env"       codec:"env"`
	Commit    string `json:"commit"    msgpack:"commit"    codec:"commit"`
	BuildDate string `json:"buildDate" msgpack:"buildDate" codec:"buildDate"`
}

// WithReadTimeout sets read timeout.
func WithReadTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPServer) { s.readTimeout = d }
}

// WithWriteTimeout sets write timeout.
func WithWriteTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPServer) { s.writeTimeout = d }
}

// WithLogger sets the request and error logger.
func WithLogger(logger zerolog.Logger) HTTPOption {
	return func(s *HTTPServer) { s.logger = logger }
}

// WithBuildInfo sets what /version reports.
func WithBuildInfo(info BuildInfo) HTTPOption {
	return func(s *HTTPServer) { s.build = info }
}

// WithMaxFactorInput sets the largest n accepted by /factors/:n.
func WithMaxFactorInput(limit int64) HTTPOption {
	return func(s *HTTPServer) { s.maxFactorInput = limit }
}

// WithMetrics records request count and latency on meter and mounts handler on /metrics.
// Without it the server records nothing and /metrics is not routed.
func WithMetrics(meter metric.Meter, handler http.Handler) HTTPOption {
	return func(s *HTTPServer) {
		s.meter = meter
		s.metricsHandler = handler
	}
}

// WithSerializers replaces the registry used for Accept negotiation.
func WithSerializers(registry *serializer.Registry) HTTPOption {
	return func(s *HTTPServer) { s.serializers = registry }
}
