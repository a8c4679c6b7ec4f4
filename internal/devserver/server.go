// Package devserver is an in-memory implementation of the platform REST API
// for local development and client tests. It keeps no state across restarts.
package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Config configures a Server.
type Config struct {
	// ListenAddr is the TCP address to bind, e.g. ":8080".
	ListenAddr string

	// Tokens are the accepted bearer tokens. Empty accepts any non-empty token.
	Tokens []string

	// Managed makes GET /orgs answer with the managed-provider shape.
	Managed bool

	// ProfileStep is the progress added on each threat-profile status poll (default: 25).
	ProfileStep int

	// Seed preloads a few organizations.
	Seed bool

	// Logger for request logging (default: slog.Default()).
	Logger *slog.Logger
}

// Server is the development HTTP API server.
type Server struct {
	config Config
	http   *http.Server
	store  *Store
	logger *slog.Logger
	addr   string
}

// NewServer creates a new Server with the given config.
func NewServer(cfg Config) *Server {
	if cfg.ProfileStep <= 0 {
		cfg.ProfileStep = 25
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		store:  NewStore(cfg.ProfileStep),
		logger: logger,
	}
	if cfg.Seed {
		s.store.Seed()
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Store exposes the backing store, for seeding in tests.
func (s *Server) Store() *Store {
	return s.store
}

// Addr returns the bound address once Start has returned.
func (s *Server) Addr() string {
	return s.addr
}

// Start begins listening for HTTP requests (non-blocking).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.addr = ln.Addr().String()

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server", "err", err)
		}
	}()

	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler builds the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Organizations
	mux.HandleFunc("POST /orgs", s.requireAuth(s.handleCreateOrg))
	mux.HandleFunc("POST /orgs/le", s.requireAuth(s.handleCreateLEOrg))
	mux.HandleFunc("GET /orgs", s.requireAuth(s.handleListOrgs))
	mux.HandleFunc("GET /orgs/all", s.requireAuth(s.handleListAllOrgs))
	mux.HandleFunc("GET /orgs/switch/{client_name}", s.requireAuth(s.handleSwitchOrg))
	mux.HandleFunc("GET /orgs/{client_name}", s.requireAuth(s.handleGetOrg))
	mux.HandleFunc("PATCH /orgs/{client_name}", s.requireAuth(s.handleUpdateOrg))
	mux.HandleFunc("DELETE /orgs/{client_name}", s.requireAuth(s.handleDeleteOrg))

	// Assessments
	mux.HandleFunc("POST /assessments", s.requireAuth(s.handleCreateAssessment))
	mux.HandleFunc("GET /assessments", s.requireAuth(s.handleListAssessments))

	// Threat profiling
	mux.HandleFunc("POST /threat-profiling/{client_name}", s.requireAuth(s.handleStartProfile))
	mux.HandleFunc("GET /threat-profiling/{client_name}/status", s.requireAuth(s.handleProfileStatus))
	mux.HandleFunc("GET /threat-profiling/{client_name}/report", s.requireAuth(s.handleProfileReport))

	// Payments
	mux.HandleFunc("POST /payments/checkout-session", s.requireAuth(s.handleCheckout))

	return chain(mux, s.recoveryMiddleware, requestIDMiddleware, s.loggingMiddleware, maxBytesMiddleware(1<<20))
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
