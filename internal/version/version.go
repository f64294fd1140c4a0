// Package version carries build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/hyp3rd/numsvc/internal/version.Version=1.2.0"
package version

// Set at build time.
//
//nolint:gochecknoglobals
var (
	Version   = ""
	Commit    = "unknown"
	BuildDate = "unknown"
)
