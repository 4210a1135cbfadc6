// Package server provides the HTTP surface for the message-processing
// service: the webhook endpoint the connector posts to, plus health checks.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gastobot/internal/logger"
	"gastobot/internal/processor"
)

// MessageProcessor is the pipeline the webhook delegates to.
type MessageProcessor interface {
	Process(ctx context.Context, req processor.Request) processor.Response
}

// Server wraps the HTTP server with its dependencies.
type Server struct {
	srv       *http.Server
	processor MessageProcessor
	authKey   string
}

// New creates a Server listening on the given port.
func New(port int, authKey string, proc MessageProcessor) *Server {
	s := &Server{
		processor: proc,
		authKey:   authKey,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/", s.handleHome)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /process-message", s.requireAuthKey(s.handleProcessMessage))
	mux.HandleFunc("POST /api/process-message", s.requireAuthKey(s.handleProcessMessage))

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	return s
}

// Start begins serving. It blocks until the server is shut down.
func (s *Server) Start() error {
	logger.Log.Info().Str("addr", s.srv.Addr).Msg("HTTP server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Handler returns the underlying handler. Used for testing.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
