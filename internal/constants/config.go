// Package constants defines default configuration values for numsvc.
// It provides the standard settings for the HTTP listener, the factorization
// memo cache, and the service identity reported by the version endpoint.
package constants

import "time"

const (
	// DefaultAppName is the service name reported by the version endpoint
	// and attached to logs and metrics.
	DefaultAppName = "numsvc"
	// DefaultEnv is the deployment environment. "dev" switches logging to the console writer.
	DefaultEnv = "dev"
	// DefaultLogLevel is the default zerolog level name.
	DefaultLogLevel = "info"
	// DefaultVersion is reported when neither the build nor the configuration supply a version.
	DefaultVersion = "1.0.0"
	// DefaultAddr is the address the HTTP server binds to.
	DefaultAddr = ":8000"
	// DefaultFactorCacheSize is the number of distinct inputs the factorization memo retains.
	// Once full, the least recently used entry is evicted to admit a new one.
	DefaultFactorCacheSize = 1024
	// DefaultMaxFactorInput is the largest integer accepted over HTTP: the largest
	// integer a JSON number can carry exactly (2^53 - 1).
	DefaultMaxFactorInput int64 = 1<<53 - 1
	// DefaultReadTimeout is the HTTP read timeout.
	DefaultReadTimeout = 5 * time.Second
	// DefaultWriteTimeout is the HTTP write timeout.
	DefaultWriteTimeout = 5 * time.Second
	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP server.
	DefaultShutdownTimeout = 10 * time.Second
	// EnvDev is the environment name for local development.
	EnvDev = "dev"
)
