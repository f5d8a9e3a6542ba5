// Package health serves the health check and metrics endpoints of the scheduler.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-quality/internal/logger"
	"github.com/yourusername/line-quality/internal/metrics"
)

const (
	defaultPort     = "9090"
	pingTimeout     = 3 * time.Second
	shutdownTimeout = 5 * time.Second
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// RefreshStatus reports the outcome of the last forecast refresh.
// A zero time means no refresh has finished yet.
type RefreshStatus interface {
	LastRefresh() (time.Time, error)
}

// HealthResponse is the body of /health and /live.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// ReadyResponse is the body of /ready. Checks maps each check name to "ok",
// "pending", "not_ready" or an error message.
type ReadyResponse struct {
	Status      string            `json:"status"`
	Service     string            `json:"service"`
	Checks      map[string]string `json:"checks,omitempty"`
	LastRefresh string            `json:"last_refresh,omitempty"`
	Duration    string            `json:"duration,omitempty"`
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Port        string
	Logger      *logrus.Logger
	DB          DatabasePinger
	Refresh     RefreshStatus
	MetricsPath string
}

// Server answers health checks for one service. It is not ready until SetReady(true).
type Server struct {
	cfg    Config
	log    *logrus.Entry
	ready  atomic.Bool
	server *http.Server
	addr   net.Addr
}

// NewServer creates a health server. Port defaults to 9090 and MetricsPath
// to /metrics.
func NewServer(cfg Config) *Server {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	return &Server{
		cfg: cfg,
		log: logger.OrDefault(cfg.Logger).WithField("component", "health"),
	}
}

// SetReady marks whether the service accepts traffic
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady returns whether the server is ready
func (s *Server) IsReady() bool {
	return s.ready.Load()
}

// Handler routes the health check and metrics endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/live", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle(s.cfg.MetricsPath, metrics.Handler())
	return mux
}

// Start binds the port and serves in the background until ctx is done or
// Shutdown is called. Bind failures are returned.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.cfg.Port, err)
	}
	s.addr = ln.Addr()
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.WithField("addr", s.addr.String()).Info("Health server starting")
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("Health server error")
		}
	}()
	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()
	return nil
}

// Addr returns the bound address, or nil before Start
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Shutdown stops the server, waiting briefly for open requests.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.cfg.ServiceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.cfg.Version,
		Commit:    s.cfg.Commit,
	})
}

// handleReady fails while the service is not marked ready, the database does
// not answer, or the last refresh returned an error. A refresh that has not
// run yet is pending and does not fail readiness.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := ReadyResponse{Service: s.cfg.ServiceName, Checks: make(map[string]string)}
	healthy := true
	record := func(name, status string, ok bool) {
		resp.Checks[name] = status
		healthy = healthy && ok
	}

	if s.IsReady() {
		record("service", "ok", true)
	} else {
		record("service", "not_ready", false)
	}

	if s.cfg.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		err := s.cfg.DB.Ping(ctx)
		cancel()
		if err != nil {
			record("database", fmt.Sprintf("error: %v", err), false)
		} else {
			record("database", "ok", true)
		}
	}

	if s.cfg.Refresh != nil {
		at, err := s.cfg.Refresh.LastRefresh()
		switch {
		case at.IsZero():
			record("refresh", "pending", true)
		case err != nil:
			record("refresh", fmt.Sprintf("error: %v", err), false)
		default:
			record("refresh", "ok", true)
		}
		if !at.IsZero() {
			resp.LastRefresh = at.UTC().Format(time.RFC3339)
		}
	}

	resp.Duration = time.Since(start).String()
	code := http.StatusOK
	resp.Status = "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		resp.Status = "not_ready"
	}
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
