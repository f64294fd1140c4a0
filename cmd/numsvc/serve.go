package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyp3rd/ewrap"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hyp3rd/numsvc"
	"github.com/hyp3rd/numsvc/internal/config"
	"github.com/hyp3rd/numsvc/internal/logging"
	"github.com/hyp3rd/numsvc/internal/telemetry"
	"github.com/hyp3rd/numsvc/internal/telemetry/attrs"
	"github.com/hyp3rd/numsvc/internal/version"
	"github.com/hyp3rd/numsvc/pkg/compute"
	"github.com/hyp3rd/numsvc/pkg/middleware"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "listen address (HTTP_ADDR)")
	flags.String("log-level", "", "log level (LOG_LEVEL)")
	flags.Int("factor-cache-size", 0, "factorization memo capacity (FACTOR_CACHE_SIZE)")
	flags.Bool("enable-metrics", true, "expose /metrics (ENABLE_METRICS)")

	// BindPFlag only fails on a nil flag.
	_ = v.BindPFlag(config.KeyAddr, flags.Lookup("addr"))
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyFactorCacheSize, flags.Lookup("factor-cache-size"))
	_ = v.BindPFlag(config.KeyEnableMetrics, flags.Lookup("enable-metrics"))

	return cmd
}

// app is everything serve starts and stops.
type app struct {
	logger    zerolog.Logger
	server    *numsvc.HTTPServer
	telemetry *telemetry.Provider
}

// newApp wires cfg into a server that is ready but not yet listening.
func newApp(cfg *config.Config) (*app, error) {
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Env: cfg.Env, AppName: cfg.AppName})
	if err != nil {
		return nil, err
	}

	calc, err := numsvc.NewCalculator(compute.WithCacheSize(cfg.FactorCacheSize))
	if err != nil {
		return nil, err
	}

	info := numsvc.BuildInfo{
		Name:      cfg.AppName,
		Version:   cfg.Version(version.Version),
		Env:       cfg.Env,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
	}

	out := &app{logger: logger}

	meter := telemetry.NoopMeter()
	if cfg.EnableMetrics {
		out.telemetry, err = telemetry.NewPrometheus()
		if err != nil {
			return nil, err
		}

		meter = out.telemetry.Meter(cfg.AppName)
	}

	metricsMW, err := middleware.NewOTelMetricsMiddleware(calc, meter)
	if err != nil {
		return nil, err
	}

	svc := numsvc.ApplyMiddleware(metricsMW,
		func(next numsvc.Service) numsvc.Service {
			return middleware.NewOTelTracingMiddleware(next, otel.Tracer(cfg.AppName),
				middleware.WithCommonAttributes(attribute.String(attrs.AttrVersion, info.Version)))
		},
		func(next numsvc.Service) numsvc.Service { return middleware.NewLoggingMiddleware(next, logger) },
	)

	opts := []numsvc.HTTPOption{
		numsvc.WithLogger(logger),
		numsvc.WithBuildInfo(info),
		numsvc.WithReadTimeout(cfg.ReadTimeout),
		numsvc.WithWriteTimeout(cfg.WriteTimeout),
		numsvc.WithMaxFactorInput(cfg.MaxFactorInput),
	}
	if out.telemetry != nil {
		opts = append(opts, numsvc.WithMetrics(meter, out.telemetry.Handler()))
	}

	out.server, err = numsvc.NewHTTPServer(cfg.Addr, svc, opts...)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// serve runs until ctx is cancelled or the server stops on its own, then shuts down.
func serve(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	err = a.server.Start(ctx)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down")
	case <-a.server.Done():
		return ewrap.New("http server stopped unexpectedly")
	}

	//nolint:contextcheck
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	err = a.server.Shutdown(shutdownCtx)

	if a.telemetry != nil {
		tErr := a.telemetry.Shutdown(shutdownCtx)
		if tErr != nil {
			a.logger.Warn().Err(tErr).Msg("telemetry shutdown")
		}
	}

	return err
}
