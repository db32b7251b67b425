package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/beatrove/catalog/internal/export"
	"github.com/beatrove/catalog/internal/pipeline"
	"github.com/beatrove/catalog/internal/repository"
)

// Server is the catalog HTTP server. It owns nothing but the listener;
// the pipeline, repository, and exporter are injected so commands and
// tests can share them.
type Server struct {
	httpServer *http.Server
	processor  *pipeline.Processor
	repo       repository.ItemRepository
	exporter   *export.Service
	logger     *slog.Logger
}

// Config holds server wiring.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr      string
	Processor *pipeline.Processor
	Repo      repository.ItemRepository
	Exporter  *export.Service
	Logger    *slog.Logger
}

// New creates a Server with its routes registered.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		processor: cfg.Processor,
		repo:      cfg.Repo,
		exporter:  cfg.Exporter,
		logger:    cfg.Logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("server.listen", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server.shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
