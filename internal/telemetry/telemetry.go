// Package telemetry wires the OpenTelemetry metrics SDK to a Prometheus registry
// so instruments created through the otel metric API are exposed on /metrics.
package telemetry

import (
	"context"
	"net/http"

	"github.com/hyp3rd/ewrap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider owns the meter provider and the registry it exports to.
type Provider struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider
}

// NewPrometheus builds a meter provider exporting into a private Prometheus registry.
// Scope labels are dropped so series carry only the attributes recorded on them.
func NewPrometheus() (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutScopeInfo(),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return nil, ewrap.Wrap(err, "create prometheus exporter")
	}

	return &Provider{
		registry: registry,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
	}, nil
}

// Meter returns a named meter backed by the Prometheus exporter.
func (p *Provider) Meter(name string) metric.Meter { //nolint:ireturn
	return p.provider.Meter(name)
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	err := p.provider.Shutdown(ctx)
	if err != nil {
		return ewrap.Wrap(err, "shutdown meter provider")
	}

	return nil
}

// NoopMeter returns a meter whose instruments record nothing, for when metrics are disabled.
func NoopMeter() metric.Meter { //nolint:ireturn
	return noop.NewMeterProvider().Meter("numsvc")
}
