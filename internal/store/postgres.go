// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connect defaults.
const (
	DefaultConnectAttempts = 5
	DefaultConnectBackoff  = 500 * time.Millisecond
	maxConnectBackoff      = 10 * time.Second
)

// ConnectOption configures Connect.
type ConnectOption func(*connectConfig)

type connectConfig struct {
	attempts uint64
	backoff  time.Duration
	logger   *slog.Logger
}

// WithAttempts sets how many times Connect tries before giving up.
// Values below 1 are treated as 1.
func WithAttempts(n int) ConnectOption {
	return func(c *connectConfig) {
		if n < 1 {
			n = 1
		}
		c.attempts = uint64(n)
	}
}

// WithBackoff sets the initial delay between attempts. It doubles each retry.
func WithBackoff(d time.Duration) ConnectOption {
	return func(c *connectConfig) { c.backoff = d }
}

// WithLogger sets the logger used to report failed attempts.
func WithLogger(l *slog.Logger) ConnectOption {
	return func(c *connectConfig) { c.logger = l }
}

// Connect opens a pool and pings it, retrying with exponential backoff
// while the database is unreachable. A malformed URL fails immediately.
func Connect(ctx context.Context, databaseURL string, opts ...ConnectOption) (*pgxpool.Pool, error) {
	cfg := connectConfig{
		attempts: DefaultConnectAttempts,
		backoff:  DefaultConnectBackoff,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").With("operation", "parse database url").Wrap(err)
	}

	// WithMaxRetries counts retries, not attempts.
	backoff := retry.WithMaxRetries(cfg.attempts-1,
		retry.WithCappedDuration(maxConnectBackoff, retry.NewExponential(cfg.backoff)))

	var pool *pgxpool.Pool
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		p, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return oops.Code("STORE_CONFIG_INVALID").With("operation", "create pool").Wrap(err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			cfg.logger.Warn("database not reachable",
				"attempt", attempt,
				"max_attempts", cfg.attempts,
				"host", poolCfg.ConnConfig.Host,
				"error", err)
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("attempts", attempt).
			With("host", poolCfg.ConnConfig.Host).
			Wrap(err)
	}
	return pool, nil
}
