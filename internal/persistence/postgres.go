package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/opcopilot/opcopilot/internal/config"
)

// ErrPostgresDisabled is returned by Ping when no POSTGRES_DSN was configured.
var ErrPostgresDisabled = errors.New("postgres not configured")

// Postgres holds the pool behind the runtime operation store. A zero Pool
// means operations created at runtime live in memory only.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres opens and pings the operation store pool. An empty DSN is not
// an error.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		logger.Info("operation store: in-memory (POSTGRES_DSN unset)")
		return &Postgres{}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse POSTGRES_DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open operation store pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping operation store: %w", err)
	}

	logger.Info("operation store: postgres",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Close() {
	if p.Enabled() {
		p.Pool.Close()
	}
}

// Enabled reports whether runtime operations are persisted.
func (p *Postgres) Enabled() bool {
	return p != nil && p.Pool != nil
}

// Ping backs the database check of GET /health.
func (p *Postgres) Ping(ctx context.Context) error {
	if !p.Enabled() {
		return ErrPostgresDisabled
	}
	return p.Pool.Ping(ctx)
}

// PoolHandle is nil when the store is in memory; RunMigrations treats that as a no-op.
func (p *Postgres) PoolHandle() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.Pool
}
