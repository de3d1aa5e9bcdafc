package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/turtacn/MedReg-Intelligence/internal/config"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
)

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv             *http.Server
	logger          logging.Logger
	shutdownTimeout time.Duration
}

// NewServer binds the router to the configured port and timeouts.
func NewServer(cfg config.ServerConfig, handler http.Handler, log logging.Logger) *Server {
	if log == nil {
		log = logging.NewNopLogger()
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
		logger:          log,
		shutdownTimeout: shutdownTimeout,
	}
}

// Start blocks serving requests until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests within the shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
