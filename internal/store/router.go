package store

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lewisedginton/cooking_assistant/internal/config"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

// Router selects the backing store per request: canonical user identifiers
// go to the persistent store, everyone else shares the in-memory fallback.
type Router struct {
	persistent Store
	fallback   Store
	log        logger.Logger
}

// NewRouter creates a router. persistent may be nil when no database is
// configured; all traffic then uses the fallback.
func NewRouter(persistent, fallback Store, log logger.Logger) *Router {
	return &Router{persistent: persistent, fallback: fallback, log: log}
}

// For returns the store to use for the given user id. Non-canonical ids
// silently degrade to transient in-memory state.
func (r *Router) For(userID string) Store {
	if r.persistent != nil && IsCanonicalUserID(userID) {
		return r.persistent
	}
	if r.persistent != nil {
		r.log.Debug("Non-canonical user id, using in-memory state",
			logger.UserIDField(userID))
	}
	return r.fallback
}

// Persistent exposes the persistent store (nil when not configured).
func (r *Router) Persistent() Store {
	return r.persistent
}

// NewRouterFromPool wires a router for the given pool, which may be nil.
func NewRouterFromPool(ctx context.Context, pool *pgxpool.Pool, maxTurns int, log logger.Logger) *Router {
	fallback := NewMemoryStore(maxTurns)
	if pool == nil {
		log.Info("No database configured, all user state is in-memory")
		return NewRouter(nil, fallback, log)
	}
	return NewRouter(NewPostgresStore(pool, maxTurns), fallback, log)
}

// Connect opens a pgx pool for the given database settings, or returns nil
// for an empty URL.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log logger.Logger) (*pgxpool.Pool, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, nil
	}

	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("Connected to database",
		logger.IntField("max_connections", int(poolCfg.MaxConns)))
	return pool, nil
}

func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
	return poolCfg, nil
}
