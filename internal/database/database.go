package database

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

// PoolSettings sizes the game state connection pool. Zero values keep the
// pgxpool defaults.
type PoolSettings struct {
	MaxConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// PoolConfig parses connString and applies settings. MinConns never exceeds MaxConns.
func PoolConfig(connString string, settings PoolSettings) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseConnString, err)
	}

	if settings.MaxConns > 0 {
		cfg.MaxConns = int32(min(settings.MaxConns, math.MaxInt32))
	}
	cfg.MinConns = min(DefaultMinConnections, cfg.MaxConns)
	if settings.MaxLifetime > 0 {
		cfg.MaxConnLifetime = settings.MaxLifetime
	}
	if settings.MaxIdleTime > 0 {
		cfg.MaxConnIdleTime = settings.MaxIdleTime
	}
	return cfg, nil
}

// NewPool connects to PostgreSQL and verifies the connection with a ping.
func NewPool(ctx context.Context, connString string, settings PoolSettings) (*pgxpool.Pool, error) {
	cfg, err := PoolConfig(connString, settings)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	logger.FromContext(ctx).Info(LogMsgSuccessfullyConnectedToDatabase,
		"max_conns", cfg.MaxConns,
		"host", cfg.ConnConfig.Host)
	return pool, nil
}
