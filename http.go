package numsvc

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	fiber "github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/hyp3rd/ewrap"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyp3rd/numsvc/internal/constants"
	"github.com/hyp3rd/numsvc/internal/libs/serializer"
	"github.com/hyp3rd/numsvc/internal/sentinel"
	"github.com/hyp3rd/numsvc/pkg/stats"
)

// StatsRequest is the body accepted by POST /stats.
type StatsRequest struct {
	Values []float64 `json:"values"`
}

// FactorsResponse is returned by GET /factors/:n.
type FactorsResponse struct {
	N       int64   `json:"n"       msgpack:"n"       codec:"n"`
	Factors []int64 `json:"factors" msgpack:"factors" codec:"factors"`
}

// CacheStatsResponse is returned by GET /cache/stats.
type CacheStatsResponse struct {
	stats.Stats

	HitRatio float64 `json:"hitRatio" msgpack:"hitRatio" codec:"hitRatio"`
}

// HTTPServer holds the Fiber app serving a Service.
type HTTPServer struct {
	addr           string
	app            *fiber.App
	svc            Service
	readTimeout    time.Duration
	writeTimeout   time.Duration
	logger         zerolog.Logger
	build          BuildInfo
	maxFactorInput int64
	meter          metric.Meter
	metricsHandler http.Handler
	serializers    *serializer.Registry

	mu      sync.Mutex
	ln      net.Listener
	started bool
	done    chan struct{}
}

// NewHTTPServer builds the server and mounts its routes. Nothing listens until Start.
func NewHTTPServer(addr string, svc Service, opts ...HTTPOption) (*HTTPServer, error) {
	srv := &HTTPServer{
		addr:           addr,
		svc:            svc,
		readTimeout:    constants.DefaultReadTimeout,
		writeTimeout:   constants.DefaultWriteTimeout,
		logger:         zerolog.Nop(),
		build:          BuildInfo{Name: constants.DefaultAppName, Version: constants.DefaultVersion, Env: constants.DefaultEnv},
		maxFactorInput: constants.DefaultMaxFactorInput,
		serializers:    serializer.NewSerializerRegistry(),
	}
	for _, opt := range opts { // apply options
		opt(srv)
	}

	srv.app = fiber.New(fiber.Config{
		AppName:      srv.build.Name,
		ReadTimeout:  srv.readTimeout,
		WriteTimeout: srv.writeTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: srv.handleError,
	})

	observer, err := newRequestObserver(srv.meter, srv.logger, srv.build.Version)
	if err != nil {
		return nil, err
	}

	srv.app.Use(observer.handle)
	srv.mountRoutes()

	return srv, nil
}

// App exposes the Fiber app, mainly for in-process tests via App().Test.
func (s *HTTPServer) App() *fiber.App { return s.app }

// Start binds the listener and serves in the background. It is idempotent.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	lc := net.ListenConfig{}

	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return ewrap.Wrap(err, "http listen")
	}

	s.ln = ln
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		serveErr := s.app.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
		if serveErr != nil {
			s.logger.Error().Err(serveErr).Msg("http server stopped")
		}
	}()

	s.started = true
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("http server listening")

	return nil
}

// Address returns the bound address (useful when passing ":0" for ephemeral port). Empty if not started yet.
func (s *HTTPServer) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		return ""
	}

	return s.ln.Addr().String()
}

// Done is closed once the serve loop returns. It is nil before Start.
func (s *HTTPServer) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.done
}

// Shutdown stops the server, giving up when ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if !started {
		return nil
	}

	ch := make(chan error, 1)

	go func() {
		ch <- s.app.Shutdown()
	}()

	select {
	case <-ctx.Done():
		return sentinel.ErrHTTPShutdownTimeout
	case err := <-ch:
		if err != nil {
			return ewrap.Wrap(err, "http shutdown")
		}

		return nil
	}
}

// mountRoutes registers endpoints onto the Fiber app.
func (s *HTTPServer) mountRoutes() {
	s.registerBasic()
	s.registerCompute()
}

func (s *HTTPServer) registerBasic() {
	s.app.Get("/", func(fiberCtx fiber.Ctx) error {
		links := fiber.Map{
			"message": s.build.Name + " is running.",
			"health":  "/health",
			"version": "/version",
		}
		if s.metricsHandler != nil {
			links["metrics"] = "/metrics"
		}

		return fiberCtx.JSON(links)
	})
	s.app.Get("/health", func(fiberCtx fiber.Ctx) error {
		return fiberCtx.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/version", func(fiberCtx fiber.Ctx) error {
		return s.respond(fiberCtx, s.build, false)
	})

	if s.metricsHandler != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metricsHandler))
	}
}

func (s *HTTPServer) registerCompute() {
	s.app.Post("/stats", func(fiberCtx fiber.Ctx) error {
		var req StatsRequest

		err := json.Unmarshal(fiberCtx.Body(), &req)
		if err != nil {
			return ewrap.Wrap(sentinel.ErrMalformedInput, "body must be {\"values\": [numbers]}")
		}

		return s.respond(fiberCtx, s.svc.Stats(fiberCtx.Context(), req.Values), false)
	})
	s.app.Get("/factors/:n", func(fiberCtx fiber.Ctx) error {
		n, err := s.parseFactorInput(fiberCtx.Params("n"))
		if err != nil {
			return err
		}

		factors, err := s.svc.Factorize(fiberCtx.Context(), n)
		if err != nil {
			return err
		}

		return s.respond(fiberCtx, FactorsResponse{N: n, Factors: factors}, true)
	})
	s.app.Get("/cache/stats", func(fiberCtx fiber.Ctx) error {
		st := s.svc.CacheStats()

		return s.respond(fiberCtx, CacheStatsResponse{Stats: st, HitRatio: st.HitRatio()}, false)
	})
}

// parseFactorInput accepts any base-10 int64 up to the configured ceiling.
// Negative values pass through so the Service can reject them.
func (s *HTTPServer) parseFactorInput(raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ewrap.Wrapf(sentinel.ErrMalformedInput, "n must be an integer, got %q", raw)
	}

	if n > s.maxFactorInput {
		return 0, ewrap.Wrapf(sentinel.ErrInputTooLarge, "n must not exceed %d", s.maxFactorInput)
	}

	return n, nil
}

// handleError renders every error as {"error": message} with the status from statusFor.
func (s *HTTPServer) handleError(fiberCtx fiber.Ctx, err error) error {
	status := statusFor(err)
	message := err.Error()

	if status >= fiber.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", fiberCtx.Path()).Msg("request failed")
		message = http.StatusText(status)
	}

	return fiberCtx.Status(status).JSON(fiber.Map{"error": message})
}

// statusFor maps client-input sentinels to 400, keeps Fiber's own codes and treats the rest as 500.
func statusFor(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	switch {
	case errors.Is(err, sentinel.ErrInvalidArgument),
		errors.Is(err, sentinel.ErrMalformedInput),
		errors.Is(err, sentinel.ErrInputTooLarge):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
