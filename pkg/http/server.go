package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"FinLab/pkg/http/middleware"
	applogger "FinLab/pkg/logger"
)

// Handler mounts its routes on the Echo instance.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

type serverSettings struct {
	host           string
	port           int
	read, write    time.Duration
	grace          time.Duration
	cors           bool
	metricsPath    string
	metricsHandler http.Handler
	registerer     prometheus.Registerer
}

// ServerOption tunes NewServer.
type ServerOption func(*serverSettings)

func WithHost(host string) ServerOption {
	return func(s *serverSettings) { s.host = host }
}

func WithPort(port int) ServerOption {
	return func(s *serverSettings) { s.port = port }
}

// WithTimeouts sets the read and write deadlines and the shutdown grace period.
func WithTimeouts(read, write, grace time.Duration) ServerOption {
	return func(s *serverSettings) {
		s.read, s.write, s.grace = read, write, grace
	}
}

func WithCORS(enabled bool) ServerOption {
	return func(s *serverSettings) { s.cors = enabled }
}

// WithMetrics mounts h on path and records per-route request metrics on reg.
func WithMetrics(path string, h http.Handler, reg prometheus.Registerer) ServerOption {
	return func(s *serverSettings) {
		s.metricsPath, s.metricsHandler, s.registerer = path, h, reg
	}
}

// Server is a read-only Echo API with recovery, access logging and optional metrics.
type Server struct {
	e    *echo.Echo
	addr string
	log  *applogger.Logger

	grace time.Duration
}

func NewServer(l *applogger.Logger, handler Handler, opts ...ServerOption) *Server {
	s := serverSettings{
		host:        "0.0.0.0",
		port:        8080,
		read:        10 * time.Second,
		write:       10 * time.Second,
		grace:       10 * time.Second,
		cors:        true,
		metricsPath: "/metrics",
	}
	for _, opt := range opts {
		opt(&s)
	}
	if l == nil {
		l = applogger.Nop()
	}

	e := echo.New()
	e.HideBanner, e.HidePort = true, true
	e.Server.ReadTimeout = s.read
	e.Server.WriteTimeout = s.write

	e.Use(middleware.Recover(l), middleware.RequestLogging(l))
	if s.registerer != nil {
		e.Use(middleware.Metrics(s.registerer))
	}
	if s.cors {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
		}))
	}
	if handler != nil {
		handler.RegisterRoutes(e)
	}
	if s.metricsHandler != nil {
		e.GET(s.metricsPath, echo.WrapHandler(s.metricsHandler))
	}

	return &Server{
		e:     e,
		addr:  fmt.Sprintf("%s:%d", s.host, s.port),
		log:   l,
		grace: s.grace,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for the grace period.
// It returns the listen error, if any.
func (s *Server) Run(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", applogger.String("addr", s.addr))
		if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.log.Info("http server shutting down")
	case runErr = <-listenErr:
		if runErr != nil {
			s.log.Error("http server failed", applogger.Error(runErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("http shutdown incomplete", applogger.Error(err))
	}
	return runErr
}

// ServeHTTP lets tests drive the full middleware chain without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}
