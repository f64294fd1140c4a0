// Package config loads the numsvc runtime configuration.
//
// Values are resolved with viper in increasing precedence: built-in defaults,
// an optional config file (any format viper reads: yaml, toml, json), then the
// environment variables listed in envBindings. Command-line flags can be bound
// on top through the *viper.Viper returned by NewViper.
package config

import (
	"strings"
	"time"

	"github.com/hyp3rd/ewrap"
	"github.com/spf13/viper"

	"github.com/hyp3rd/numsvc/internal/constants"
	"github.com/hyp3rd/numsvc/internal/logging"
	"github.com/hyp3rd/numsvc/internal/sentinel"
)

// Config keys.
const (
	KeyAppName         = "app_name"
	KeyEnv             = "env"
	KeyLogLevel        = "log_level"
	KeyEnableMetrics   = "enable_metrics"
	KeyVersionOverride = "version_override"
	KeyAddr            = "addr"
	KeyFactorCacheSize = "factor_cache_size"
	KeyMaxFactorInput  = "max_factor_input"
	KeyReadTimeout     = "read_timeout"
	KeyWriteTimeout    = "write_timeout"
	KeyShutdownTimeout = "shutdown_timeout"
)

// Config is the complete service configuration.
type Config struct {
	AppName         string        `json:"appName"         mapstructure:"app_name"`
	Env             string        `json:"env"             mapstructure:"env"`
	LogLevel        string        `json:"logLevel"        mapstructure:"log_level"`
	EnableMetrics   bool          `json:"enableMetrics"   mapstructure:"enable_metrics"`
	VersionOverride string        `json:"versionOverride" mapstructure:"version_override"`
	Addr            string        `json:"addr"            mapstructure:"addr"`
	FactorCacheSize int           `json:"factorCacheSize" mapstructure:"factor_cache_size"`
	MaxFactorInput  int64         `json:"maxFactorInput"  mapstructure:"max_factor_input"`
	ReadTimeout     time.Duration `json:"readTimeout"     mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `json:"writeTimeout"    mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" mapstructure:"shutdown_timeout"`
}

// envBindings maps config keys to the environment variables that set them.
//
//nolint:gochecknoglobals
var envBindings = map[string]string{
	KeyAppName:         "APP_NAME",
	KeyEnv:             "APP_ENV",
	KeyLogLevel:        "LOG_LEVEL",
	KeyEnableMetrics:   "ENABLE_METRICS",
	KeyVersionOverride: "APP_VERSION",
	KeyAddr:            "HTTP_ADDR",
	KeyFactorCacheSize: "FACTOR_CACHE_SIZE",
	KeyMaxFactorInput:  "MAX_FACTOR_INPUT",
	KeyReadTimeout:     "HTTP_READ_TIMEOUT",
	KeyWriteTimeout:    "HTTP_WRITE_TIMEOUT",
	KeyShutdownTimeout: "SHUTDOWN_TIMEOUT",
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		AppName:         constants.DefaultAppName,
		Env:             constants.DefaultEnv,
		LogLevel:        constants.DefaultLogLevel,
		EnableMetrics:   true,
		Addr:            constants.DefaultAddr,
		FactorCacheSize: constants.DefaultFactorCacheSize,
		MaxFactorInput:  constants.DefaultMaxFactorInput,
		ReadTimeout:     constants.DefaultReadTimeout,
		WriteTimeout:    constants.DefaultWriteTimeout,
		ShutdownTimeout: constants.DefaultShutdownTimeout,
	}
}

// NewViper returns a viper instance with defaults and environment bindings in place.
func NewViper() *viper.Viper {
	v := viper.New()

	def := Default()
	v.SetDefault(KeyAppName, def.AppName)
	v.SetDefault(KeyEnv, def.Env)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyEnableMetrics, def.EnableMetrics)
	v.SetDefault(KeyVersionOverride, def.VersionOverride)
	v.SetDefault(KeyAddr, def.Addr)
	v.SetDefault(KeyFactorCacheSize, def.FactorCacheSize)
	v.SetDefault(KeyMaxFactorInput, def.MaxFactorInput)
	v.SetDefault(KeyReadTimeout, def.ReadTimeout)
	v.SetDefault(KeyWriteTimeout, def.WriteTimeout)
	v.SetDefault(KeyShutdownTimeout, def.ShutdownTimeout)

	for key, env := range envBindings {
		// BindEnv only fails when no key is given.
		_ = v.BindEnv(key, env)
	}

	return v
}

// Load reads the configuration, using path as the config file when it is not empty.
func Load(path string) (*Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
	}

	return FromViper(v)
}

// FromViper reads the config file set on v (if any), decodes and validates the result.
func FromViper(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() != "" {
		err := v.ReadInConfig()
		if err != nil {
			return nil, ewrap.Wrap(err, "reading config file")
		}
	}

	cfg := &Config{}

	err := v.Unmarshal(cfg)
	if err != nil {
		return nil, ewrap.Wrap(err, "decoding config")
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	_, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}

	if strings.TrimSpace(c.AppName) == "" {
		return ewrap.Wrap(sentinel.ErrInvalidConfig, KeyAppName+" cannot be empty")
	}

	if c.FactorCacheSize < 1 {
		return ewrap.Wrapf(sentinel.ErrInvalidConfig, "%s must be positive, got %d", KeyFactorCacheSize, c.FactorCacheSize)
	}

	if c.MaxFactorInput < 2 {
		return ewrap.Wrapf(sentinel.ErrInvalidConfig, "%s must be at least 2, got %d", KeyMaxFactorInput, c.MaxFactorInput)
	}

	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return ewrap.Wrap(sentinel.ErrInvalidConfig, "timeouts cannot be negative")
	}

	return nil
}

// Version resolves the reported version: the override wins, then the build version,
// then constants.DefaultVersion.
func (c *Config) Version(build string) string {
	if c.VersionOverride != "" {
		return c.VersionOverride
	}

	if build != "" {
		return build
	}

	return constants.DefaultVersion
}
