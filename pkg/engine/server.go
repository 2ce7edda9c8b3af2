package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/parkit/parkmock/pkg/logging"
	"github.com/parkit/parkmock/pkg/scenario"
)

// ServerConfig configures the standalone mock server process.
type ServerConfig struct {
	// ListenAddr is the address the HTTP listener binds to.
	ListenAddr string

	// AllowedOrigins configures CORS for browser-hosted applications.
	// Defaults to all origins; the mock never serves real users.
	AllowedOrigins []string

	// AccessLog enables Apache-style access logging to stdout.
	AccessLog bool
}

// Server runs a Handler behind a real HTTP listener, alongside the
// control endpoints under /__parkmock/.
type Server struct {
	cfg        ServerConfig
	handler    *Handler
	log        *slog.Logger
	instanceID string
	httpServer *http.Server

	mu        sync.Mutex
	running   bool
	startTime time.Time
}

// NewServer creates a Server around a Handler.
func NewServer(cfg ServerConfig, h *Handler, log *slog.Logger) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":4280"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Server{
		cfg:        cfg,
		handler:    h,
		log:        log,
		instanceID: newInstanceID(),
	}
}

// HTTPHandler returns the composite handler: control endpoints take
// priority, everything else goes through contract routing. The same
// handler backs both the listener and in-process interception.
func (s *Server) HTTPHandler() http.Handler {
	root := mux.NewRouter()
	root.PathPrefix("/__parkmock/").Handler(s.controlRouter())
	root.PathPrefix("/").Handler(s.handler)

	var h http.Handler = root
	if s.cfg.AccessLog {
		h = handlers.CombinedLoggingHandler(os.Stdout, h)
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{
			"Authorization", "Content-Type",
			scenario.HeaderResponseCode, scenario.HeaderResponseText,
			scenario.HeaderEmptyResponse, scenario.HeaderTooManyReservations,
		}),
	)
	return cors(h)
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startTime = time.Now()
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()

	s.log.Info("mock server listening", "addr", s.cfg.ListenAddr, "instance", s.instanceID)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.httpServer == nil {
		return nil
	}
	s.running = false
	s.log.Info("mock server shutting down")
	return s.httpServer.Shutdown(ctx)
}
