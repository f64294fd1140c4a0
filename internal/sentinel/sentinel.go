// Package sentinel provides standardized error definitions for numsvc.
// This package centralizes the error values used across the service components,
// ensuring consistent error handling and messaging throughout the application.
//
// The errors defined here cover:
// - Invalid client input (negative or oversized integers, malformed bodies)
// - Invalid configuration parameters (capacity, log level, serializer names)
// - Runtime lifecycle errors (shutdown deadlines)
//
// All errors are created using the ewrap package; call sites wrap them with
// ewrap.Wrap and callers match them with errors.Is.
package sentinel

import (
	"github.com/hyp3rd/ewrap"
)

var (
	// ErrInvalidArgument is returned when a caller supplies an argument outside the accepted domain,
	// such as a negative integer passed to the factorization operation.
	ErrInvalidArgument = ewrap.New("invalid argument")

	// ErrMalformedInput is returned when a request body or path parameter cannot be decoded.
	ErrMalformedInput = ewrap.New("malformed input")

	// ErrInputTooLarge is returned when an integer exceeds the configured factorization ceiling.
	ErrInputTooLarge = ewrap.New("input too large")

	// ErrInvalidCapacity is returned when an invalid capacity is passed to the memo cache.
	ErrInvalidCapacity = ewrap.New("capacity must be positive")

	// ErrParamCannotBeEmpty is returned when a parameter cannot be empty.
	ErrParamCannotBeEmpty = ewrap.New("param cannot be empty")

	// ErrSerializerNotFound is returned when a serializer is not found.
	ErrSerializerNotFound = ewrap.New("serializer not found")

	// ErrInvalidLogLevel is returned when the configured log level is unknown.
	ErrInvalidLogLevel = ewrap.New("invalid log level")

	// ErrInvalidConfig is returned when a configuration value fails validation.
	ErrInvalidConfig = ewrap.New("invalid configuration")

	// ErrHTTPShutdownTimeout is returned when the HTTP server fails to shutdown before context deadline.
	ErrHTTPShutdownTimeout = ewrap.New("http shutdown timeout")
)
