// Package server exposes the ask service over HTTP together with the
// embedded single-page web UI.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/phuslu/log"

	"github.com/abduilm/lexuz-bot/internal/domain"
)

// Server manages the HTTP listener and routes.
type Server struct {
	asker  domain.AskService
	server *http.Server
}

// New creates an HTTP server answering on host:port.
func New(host string, port int, asker domain.AskService) *Server {
	s := &Server{asker: asker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.homeHandler)
	mux.HandleFunc("/ask", s.askHandler)
	mux.HandleFunc("/healthz", s.healthHandler)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      s.withMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start runs the listener until Shutdown or a fatal error.
func (s *Server) Start() error {
	log.Info().Str("address", s.server.Addr).Msg("HTTP server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
