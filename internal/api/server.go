// Package api provides the read-only HTTP report server for ACS
// Control Core.
//
// It serves paginated measurement history for dashboards and ad-hoc
// inspection. It deliberately exposes no write operations: all state
// changes flow through MQTT or operator tooling against the database.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmorante/acs-control-core/internal/infrastructure/config"
	"github.com/dmorante/acs-control-core/internal/infrastructure/logging"
	"github.com/dmorante/acs-control-core/internal/telemetry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the report server.
type Deps struct {
	Config       config.APIConfig
	Logger       *logging.Logger
	Measurements telemetry.Repository
	Version      string
}

// Server is the HTTP report server.
type Server struct {
	cfg          config.APIConfig
	logger       *logging.Logger
	measurements telemetry.Repository
	version      string
	server       *http.Server
}

// New creates a report server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Measurements == nil {
		return nil, fmt.Errorf("measurement repository is required")
	}

	return &Server{
		cfg:          deps.Config,
		logger:       deps.Logger,
		measurements: deps.Measurements,
		version:      deps.Version,
	}, nil
}

// Start launches the HTTP listener in a background goroutine.
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("report server error", "error", err)
		}
	}()

	s.logger.Info("report server listening", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the report server, waiting up to ten
// seconds for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down report server: %w", err)
	}
	return nil
}

// HealthCheck verifies the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("report server not started")
	}

	return nil
}
