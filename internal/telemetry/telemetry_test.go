package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/longbridgeapp/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestProvider_ExportsCounter(t *testing.T) {
	provider, err := NewPrometheus()
	assert.Nil(t, err)

	defer func() { _ = provider.Shutdown(context.Background()) }()

	counter, err := provider.Meter("test").Int64Counter("widgets_made")
	assert.Nil(t, err)

	counter.Add(context.Background(), 3, metric.WithAttributes(attribute.String("color", "red")))

	rec := httptest.NewRecorder()
	provider.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(string(body), "widgets_made"))
	assert.True(t, strings.Contains(string(body), `color="red"`))
}

func TestNoopMeter(t *testing.T) {
	counter, err := NoopMeter().Int64Counter("ignored")
	assert.Nil(t, err)

	counter.Add(context.Background(), 1)
}
