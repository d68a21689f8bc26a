// Package web exposes the message board over HTTP: the message API, a
// status/health surface and the embedded front page.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/inovacc/gitboard/internal/service"
)

//go:embed static/*
var staticFS embed.FS

// Config holds the web server configuration
type Config struct {
	Port int
	Host string
}

// Server represents the web server
type Server struct {
	httpServer *http.Server
	svc        *service.MessageService
	config     Config
	logger     *slog.Logger
	started    time.Time
}

// New creates a new web server
func New(config Config, svc *service.MessageService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		svc:    svc,
		config: config,
		logger: logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           s.withRequestLog(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.started = time.Now()

	s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
