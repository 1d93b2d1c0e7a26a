// Package httpapi exposes the assistant over HTTP: the chat endpoint, the
// image and recipe-extraction endpoints, and health probes.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lewisedginton/cooking_assistant/internal/config"
	"github.com/lewisedginton/cooking_assistant/internal/monitoring"
	"github.com/lewisedginton/cooking_assistant/pkg/httpmiddleware"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
	"github.com/lewisedginton/cooking_assistant/pkg/metrics"
)

// Server hosts the HTTP API.
type Server struct {
	cfg     *config.AppConfig
	handler *Handler
	monitor *monitoring.HealthMonitor
	metrics *metrics.Metrics
	log     logger.Logger
	srv     *http.Server
}

// NewServer wires the router and returns a server ready to listen.
func NewServer(
	cfg *config.AppConfig,
	handler *Handler,
	monitor *monitoring.HealthMonitor,
	m *metrics.Metrics,
	log logger.Logger,
) *Server {
	s := &Server{cfg: cfg, handler: handler, monitor: monitor, metrics: m, log: log}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return s
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()

	mwCfg := httpmiddleware.DefaultConfig()
	mwCfg.Logger = s.log
	mwCfg.EnableLogging = true
	mwCfg.Timeout = s.cfg.RequestTimeout
	if len(s.cfg.Security.CORSAllowedOrigins) > 0 {
		mwCfg.CORS.AllowedOrigins = s.cfg.Security.CORSAllowedOrigins
	}
	httpmiddleware.ApplyToRouter(r, mwCfg)

	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handler.Chat)
		r.Post("/analyze-image", s.handler.AnalyzeImage)
		r.Post("/extract-recipe", s.handler.ExtractRecipe)
	})

	if s.monitor != nil {
		r.Get("/health/live", s.monitor.LivenessHandler())
		r.Get("/health/ready", s.monitor.ReadinessHandler())
	}

	return r
}

// Start runs the server until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening",
		logger.IntField("port", s.cfg.Port),
	)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
