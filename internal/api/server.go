// Package api serves a local HTTP status surface while watch mode runs:
// health, orchestrator state, workspace counts, and pause/resume control.
// It binds to loopback only.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/swapdeck/swapdeck/internal/orchestrator"
	"github.com/swapdeck/swapdeck/internal/workspace"
)

// Controller is the orchestrator surface the API needs.
// Satisfied by *orchestrator.Orchestrator.
type Controller interface {
	Snapshot() orchestrator.Snapshot
	Pause()
	Resume()
	IsPaused() bool
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port       int
	Controller Controller
	Layout     *workspace.Layout
	Preflight  func() error // engine availability probe, nil = unknown
	Logger     *slog.Logger
	StartTime  time.Time
	Version    string
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
