// Package server exposes health, metrics and last-build status over HTTP
// while `pagebundle watch` is running.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebundle/internal/logfields"
	"git.home.luguber.info/inful/pagebundle/internal/metrics"
	"git.home.luguber.info/inful/pagebundle/internal/pipeline"
	"git.home.luguber.info/inful/pagebundle/internal/version"
)

// StatusSource reports the most recent build, or nil before the first one.
type StatusSource interface {
	LastBuild() *pipeline.BuildReport
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	Uptime      float64   `json:"uptime"`
	LastOutcome string    `json:"last_outcome,omitempty"`
}

// Server is the watch-mode admin endpoint.
type Server struct {
	addr     string
	registry *prom.Registry
	status   StatusSource
	started  time.Time

	srv *http.Server
	ln  net.Listener
}

// New creates a server for addr. Nothing listens until Start.
func New(addr string, registry *prom.Registry, status StatusSource) *Server {
	return &Server{addr: addr, registry: registry, status: status, started: time.Now()}
}

// Handler returns the routing mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	return mux
}

// Start binds the listener before returning so an address in use fails fast,
// then serves in the background.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to bind status server").
			WithContext("addr", s.addr).
			Build()
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			slog.Error("Status server error", logfields.Error(err))
		}
	}()
	slog.Info("Status server started", slog.String("addr", s.Addr()))
	return nil
}

// Addr is the bound address once started, else the configured one.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "status server shutdown").Build()
	}
	slog.Info("Status server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(s.started).Seconds(),
	}
	if last := s.lastBuild(); last != nil {
		health.LastOutcome = string(last.Outcome)
	}
	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	last := s.lastBuild()
	if last == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no build yet"})
		return
	}
	writeJSON(w, http.StatusOK, last.SanitizedCopy())
}

func (s *Server) lastBuild() *pipeline.BuildReport {
	if s.status == nil {
		return nil
	}
	return s.status.LastBuild()
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "invalid HTTP method"})
	return false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(body); err != nil {
		slog.Warn("Failed to write response", logfields.Error(err))
	}
}
