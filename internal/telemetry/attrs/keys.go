// Package attrs provides reusable OpenTelemetry attribute key constants
// to avoid duplication across middlewares and the HTTP server.
package attrs

const (
	// AttrMethod names the service method being recorded.
	AttrMethod = "method"
	// AttrValuesCount is the number of values submitted to the statistics operation.
	AttrValuesCount = "values.count"
	// AttrInput is the integer submitted to the factorization operation.
	AttrInput = "input"
	// AttrFactorsCount is the number of prime factors returned, with multiplicity.
	AttrFactorsCount = "factors.count"
	// AttrOutcome is "ok" or "error".
	AttrOutcome = "outcome"
	// AttrHTTPMethod is the HTTP request method.
	AttrHTTPMethod = "method"
	// AttrEndpoint is the matched route pattern, not the raw path, to bound cardinality.
	AttrEndpoint = "endpoint"
	// AttrHTTPStatus is the response status code rendered as a string.
	AttrHTTPStatus = "http_status"
	// AttrVersion is the service version carried by the app_info gauge.
	AttrVersion = "version"
)
