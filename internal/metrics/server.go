package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"firestige.xyz/strix/internal/log"
)

// Config controls the embedded prometheus endpoint.
type Config struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen,omitempty"`
	Path    string `mapstructure:"path" yaml:"path,omitempty"`
}

// Server exposes the prometheus registry over HTTP.
type Server struct {
	cfg    Config
	logger log.Logger
	server *http.Server
}

func NewServer(cfg Config, logger log.Logger) *Server {
	if cfg.Listen == "" {
		cfg.Listen = ":9090"
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
	return &Server{cfg: cfg, logger: logger}
}

// Start serves the endpoint in the background until Stop.
func (s *Server) Start(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, promhttp.Handler())
	s.server = &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		s.logger.WithField("addr", s.cfg.Listen).Info("metrics server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("metrics server failed")
		}
	}()
}

// Stop shuts the endpoint down, waiting up to five seconds.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}
