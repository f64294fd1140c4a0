// Package logging builds the zerolog logger shared by the CLI, the HTTP server
// and the logging middleware.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hyp3rd/ewrap"
	"github.com/rs/zerolog"

	"github.com/hyp3rd/numsvc/internal/constants"
	"github.com/hyp3rd/numsvc/internal/sentinel"
)

// Config selects the logger output.
type Config struct {
	Level   string    // zerolog level name: trace, debug, info, warn, error, fatal, panic, disabled
	Env     string    // "dev" selects the console writer, anything else JSON
	AppName string    // attached as the "app" field when set
	Out     io.Writer // defaults to os.Stderr
}

// ParseLevel converts a level name into a zerolog.Level. Empty names are rejected.
func ParseLevel(name string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.NoLevel, ewrap.Wrapf(sentinel.ErrInvalidLogLevel, "%q", name)
	}

	return level, nil
}

// New returns a timestamped logger for cfg.
func New(cfg Config) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	if cfg.Env == constants.EnvDev {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = out
			w.TimeFormat = time.RFC3339
		})
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.AppName != "" {
		ctx = ctx.Str("app", cfg.AppName)
	}

	return ctx.Logger(), nil
}
