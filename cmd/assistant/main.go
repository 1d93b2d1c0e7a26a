// The assistant command runs the cooking assistant HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lewisedginton/cooking_assistant/internal/actions"
	"github.com/lewisedginton/cooking_assistant/internal/chat"
	appconfig "github.com/lewisedginton/cooking_assistant/internal/config"
	"github.com/lewisedginton/cooking_assistant/internal/history"
	"github.com/lewisedginton/cooking_assistant/internal/httpapi"
	"github.com/lewisedginton/cooking_assistant/internal/imagestore"
	"github.com/lewisedginton/cooking_assistant/internal/models/gemini"
	"github.com/lewisedginton/cooking_assistant/internal/monitoring"
	"github.com/lewisedginton/cooking_assistant/internal/nutrition"
	"github.com/lewisedginton/cooking_assistant/internal/promptctx"
	"github.com/lewisedginton/cooking_assistant/internal/safety"
	"github.com/lewisedginton/cooking_assistant/internal/store"
	"github.com/lewisedginton/cooking_assistant/pkg/config"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
	"github.com/lewisedginton/cooking_assistant/pkg/metrics"
	"github.com/lewisedginton/cooking_assistant/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg appconfig.AppConfig
	if err := config.GetConfig(&cfg, os.Getenv("CONFIG_FILE"), true); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewLogger(logger.Config{
		Level:   cfg.GetLogLevel(),
		Format:  cfg.Logging.Format,
		Service: cfg.ServiceName,
	})
	cfg.LogConfig(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Datastore. An empty URL means guest-only in-memory state.
	pool, err := store.Connect(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if pool != nil {
		defer pool.Close()

		migrator := store.NewMigrationManager(pool, log)
		if err := migrator.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	router := store.NewRouterFromPool(ctx, pool, cfg.History.MaxTurns, log)

	sessions := history.NewSessionStore(cfg.History.MaxTurns, cfg.History.SessionTTL, log)
	sessions.StartSweeper(ctx, time.Minute)

	model, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Monitoring.MetricsEnabled {
		created := metrics.NewMetrics(true, true, log)
		m = &created
		go m.Listen(cfg.Monitoring.MetricsPort)
	}

	pipeline := chat.NewPipeline(
		safety.NewGate(log),
		router,
		sessions,
		history.NewWriter(sessions, router, log),
		promptctx.New(promptctx.DefaultRecipeWindow, log),
		model,
		actions.NewExecutor(router, m, log),
		nutrition.NewEstimator(model, nil, m, log),
		m,
		log,
	)

	var analyzer *chat.Analyzer
	images, err := imagestore.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Warn("Image storage unavailable, analysis will not retain uploads",
			logger.ErrorField(err),
		)
		analyzer = chat.NewAnalyzer(model, nil, log)
	} else {
		analyzer = chat.NewAnalyzer(model, images, log)
	}
	extractor := chat.NewExtractor(model, router, nil, log)

	monitor := monitoring.NewHealthMonitor(monitoring.Config{
		Logger:           log,
		Database:         pinger(pool),
		ModelConfigured:  cfg.Gemini.APIKey != "",
		Timeout:          cfg.Monitoring.HealthCheckTimeout,
		FailureThreshold: cfg.Monitoring.FailureThreshold,
	})

	handler := httpapi.NewHandler(pipeline, analyzer, extractor, cfg.Security.MaxRequestSize, log)
	server := httpapi.NewServer(&cfg, handler, monitor, m, log)

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutting down", logger.StringField("signal", sig.String()))
	case err := <-utils.MergeErrorChans(errCh):
		if err != nil {
			return err
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// pinger adapts a possibly-nil pool to the health monitor's interface.
// A typed nil inside a non-nil interface would defeat the nil check.
func pinger(pool *pgxpool.Pool) monitoring.Pinger {
	if pool == nil {
		return nil
	}
	return pool
}
