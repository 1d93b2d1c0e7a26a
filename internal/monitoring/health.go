// Package monitoring wires health checks for the assistant's dependencies.
package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lewisedginton/cooking_assistant/pkg/health"
	"github.com/lewisedginton/cooking_assistant/pkg/health/checkers"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

// Pinger is the datastore readiness probe, satisfied by pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds configuration for the health monitor.
type Config struct {
	Logger           logger.Logger
	Database         Pinger        // Optional: readiness fails when the pool is unreachable
	ModelConfigured  bool          // Whether a model API key is present
	ModelHealthURL   string        // Optional: HTTP endpoint probed for model availability
	Timeout          time.Duration // Health check timeout
	FailureThreshold int           // Consecutive failures before reporting unhealthy
}

// HealthMonitor exposes liveness and readiness handlers for the service.
type HealthMonitor struct {
	checker *health.HealthChecker
	log     logger.Logger
}

// NewHealthMonitor builds a monitor with a process liveness check plus
// readiness checks for whichever dependencies are configured.
func NewHealthMonitor(cfg Config) *HealthMonitor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	failureThreshold := cfg.FailureThreshold
	if failureThreshold == 0 {
		failureThreshold = 3
	}

	checker := health.New(
		health.WithLogger(cfg.Logger),
		health.WithTimeout(timeout),
		health.WithFailureThreshold(failureThreshold),
	)

	checker.AddLivenessCheck(health.NewCheckFunc("process", func(ctx context.Context) error {
		return nil
	}))

	checker.AddReadinessCheck(health.NewCheckFunc("model", func(ctx context.Context) error {
		if !cfg.ModelConfigured {
			return fmt.Errorf("model api key not configured")
		}
		return nil
	}))

	if cfg.ModelHealthURL != "" {
		checker.AddReadinessCheck(checkers.NewHTTPChecker(cfg.ModelHealthURL, "model_api"))
	}

	if cfg.Database != nil {
		checker.AddReadinessCheck(health.NewCheckFunc("database", func(ctx context.Context) error {
			return cfg.Database.Ping(ctx)
		}))
	}

	return &HealthMonitor{checker: checker, log: cfg.Logger}
}

// LivenessHandler serves GET /health/live.
func (hm *HealthMonitor) LivenessHandler() http.HandlerFunc {
	return hm.checker.LivenessHandler()
}

// ReadinessHandler serves GET /health/ready.
func (hm *HealthMonitor) ReadinessHandler() http.HandlerFunc {
	return hm.checker.ReadinessHandler()
}
