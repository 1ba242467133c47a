package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ledcord/voicelight/internal/audit"
	"github.com/ledcord/voicelight/internal/infrastructure/config"
	"github.com/ledcord/voicelight/internal/infrastructure/logging"
	"github.com/ledcord/voicelight/internal/infrastructure/mqtt"
	"github.com/ledcord/voicelight/internal/lightconfig"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is implemented by the database and InfluxDB clients.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BrokerState reports the MQTT link state.
type BrokerState interface {
	State() mqtt.State
}

// Roster lists the enabled lighting configurations.
type Roster interface {
	ListEnabled(ctx context.Context) ([]lightconfig.UserLightConfig, error)
}

// AuditLog lists configuration changes.
type AuditLog interface {
	List(ctx context.Context, filter audit.Filter) (*audit.ListResult, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Database HealthChecker
	MQTT     BrokerState
	InfluxDB HealthChecker // nil when disabled
	Roster   Roster
	Audit    AuditLog // optional
	Version  string
}

// Server is the HTTP status server.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	database HealthChecker
	mqtt     BrokerState
	influx   HealthChecker
	roster   Roster
	audit    AuditLog
	version  string
	server   *http.Server
	listener net.Listener
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Database == nil {
		return nil, fmt.Errorf("database is required")
	}
	if deps.MQTT == nil {
		return nil, fmt.Errorf("mqtt client is required")
	}
	if deps.Roster == nil {
		return nil, fmt.Errorf("roster is required")
	}

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		database: deps.Database,
		mqtt:     deps.MQTT,
		influx:   deps.InfluxDB,
		roster:   deps.Roster,
		audit:    deps.Audit,
		version:  deps.Version,
	}, nil
}

// Start binds the listener and serves in a background goroutine.
//
// Returns:
//   - error: If the address cannot be bound (port in use, etc.)
func (s *Server) Start(_ context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
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
