// Package server wraps the HTTP listener around the route table.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AtRiskMedia/sunset-go/internal/application/container"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/presentation/http/routes"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
)

// Server owns the listener lifecycle for the banner, state, SSE and
// operator endpoints.
type Server struct {
	httpServer *http.Server
	logger     *logging.ChanneledLogger
}

// New builds the HTTP server over the assembled route table.
//
// WriteTimeout is deliberately left unset: /api/v1/auth/sse and
// /api/v1/ws/activity hold their response open for the life of the tab, and
// a server-wide write deadline would sever every stream at the timeout. The
// activity socket enforces a per-message write deadline with
// config.ServerWriteTimeout instead, SSE relies on request-context
// cancellation, and the short-lived JSON and fragment handlers finish well
// inside the read and idle windows.
func New(port string, container *container.Container) *Server {
	router := routes.SetupRoutes(container)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       config.ServerReadTimeout,
		ReadHeaderTimeout: config.ServerReadTimeout,
		IdleTimeout:       config.ServerIdleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		logger:     container.Logger,
	}
}

// Addr returns the listen address, for startup logging.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start begins listening for HTTP requests and blocks until shutdown.
func (s *Server) Start() error {
	s.logger.System().Info("HTTP server listening", "address", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

// Stop drains in-flight requests and closes the listener. Open SSE and
// websocket streams are cut when the context expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Shutdown().Info("Draining HTTP connections")
	return s.httpServer.Shutdown(ctx)
}
