package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/longbridgeapp/assert"
	"github.com/rs/zerolog"

	"github.com/hyp3rd/numsvc/internal/sentinel"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" DEBUG ")
	assert.Nil(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	_, err = ParseLevel("")
	assert.True(t, errors.Is(err, sentinel.ErrInvalidLogLevel))

	_, err = ParseLevel("loud")
	assert.True(t, errors.Is(err, sentinel.ErrInvalidLogLevel))
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(Config{Level: "info", Env: "prod", AppName: "numsvc", Out: &buf})
	assert.Nil(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Int("n", 12).Msg("factorized")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 1, len(lines))

	var entry map[string]any

	assert.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "factorized", entry["message"])
	assert.Equal(t, "numsvc", entry["app"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, float64(12), entry["n"])
}

func TestNew_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(Config{Level: "debug", Env: "dev", Out: &buf})
	assert.Nil(t, err)

	logger.Debug().Msg("console line")

	assert.True(t, strings.Contains(buf.String(), "console line"))
	assert.False(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "{"))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "nope"})
	assert.True(t, errors.Is(err, sentinel.ErrInvalidLogLevel))
}
