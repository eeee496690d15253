package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/smartbin-iot/smartbin-core/internal/bin"
	"github.com/smartbin-iot/smartbin-core/internal/control"
	"github.com/smartbin-iot/smartbin-core/internal/credential"
	"github.com/smartbin-iot/smartbin-core/internal/eventlog"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/config"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker reports whether a backing component is reachable.
// The database and broker client both satisfy it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	Logger      *logging.Logger
	Bins        bin.Repository
	Credentials credential.Repository
	Events      eventlog.Repository
	Distributor *control.Distributor
	Commander   *control.Commander
	Database    HealthChecker // optional, reported by /health
	Broker      HealthChecker // optional, reported by /health
	Version     string
}

// Server is the HTTP admin API server.
//
// It is created with New() and started with Start(). All methods are safe
// for concurrent use.
type Server struct {
	cfg         config.APIConfig
	logger      *logging.Logger
	bins        bin.Repository
	credentials credential.Repository
	events      eventlog.Repository
	distributor *control.Distributor
	commander   *control.Commander
	database    HealthChecker
	broker      HealthChecker
	version     string
	server      *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if deps.Bins == nil {
		return nil, errors.New("bin repository is required")
	}
	if deps.Credentials == nil {
		return nil, errors.New("credential repository is required")
	}
	if deps.Events == nil {
		return nil, errors.New("event log repository is required")
	}
	if deps.Distributor == nil {
		return nil, errors.New("config distributor is required")
	}
	if deps.Commander == nil {
		return nil, errors.New("commander is required")
	}

	return &Server{
		cfg:         deps.Config,
		logger:      deps.Logger.With("component", "api"),
		bins:        deps.Bins,
		credentials: deps.Credentials,
		events:      deps.Events,
		distributor: deps.Distributor,
		commander:   deps.Commander,
		database:    deps.Database,
		broker:      deps.Broker,
		version:     deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server is stopped with Close().
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
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting for in-flight
// requests up to gracefulShutdownTimeout.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
