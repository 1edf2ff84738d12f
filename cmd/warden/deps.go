// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package main

import (
	"context"
	"log/slog"
	"net"

	"github.com/wardenhq/warden/internal/credential"
	"github.com/wardenhq/warden/internal/identity/postgres"
	"github.com/wardenhq/warden/internal/logging"
	"github.com/wardenhq/warden/internal/observability"
	"github.com/wardenhq/warden/internal/store"
)

// Deps contains injectable dependencies for the commands.
// Nil fields use their default implementations.
type Deps struct {
	// PoolFactory connects to PostgreSQL.
	// Default: store.Connect
	PoolFactory func(ctx context.Context, url string, opts ...store.ConnectOption) (Pool, error)

	// MigratorFactory creates a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (Migrator, error)

	// ObservabilityServerFactory creates the metrics/health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, checker observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// Listen opens the API listener.
	// Default: net.ListenConfig.Listen on tcp
	Listen func(ctx context.Context, addr string) (net.Listener, error)

	// LoggerFactory builds the process logger for a log format.
	// Default: logging.SetDefault
	LoggerFactory func(format string) *slog.Logger

	// SchemeOptions are applied after the configured credential options.
	// Default: none
	SchemeOptions []credential.Option
}

// Pool is the database handle the commands use.
type Pool interface {
	postgres.DB
	Ping(ctx context.Context) error
	Close()
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	PendingMigrations() ([]uint, error)
	AppliedMigrations() ([]uint, error)
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

func (d *Deps) withDefaults() *Deps {
	out := &Deps{}
	if d != nil {
		*out = *d
	}

	if out.PoolFactory == nil {
		out.PoolFactory = func(ctx context.Context, url string, opts ...store.ConnectOption) (Pool, error) {
			pool, err := store.Connect(ctx, url, opts...)
			if err != nil {
				return nil, err //nolint:wrapcheck // store errors are already coded
			}
			return pool, nil
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(url string) (Migrator, error) {
			m, err := store.NewMigrator(url)
			if err != nil {
				return nil, err //nolint:wrapcheck // store errors are already coded
			}
			return m, nil
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, checker observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, checker, observability.WithLogger(logger))
		}
	}
	if out.Listen == nil {
		out.Listen = func(ctx context.Context, addr string) (net.Listener, error) {
			var lc net.ListenConfig
			return lc.Listen(ctx, "tcp", addr)
		}
	}
	if out.LoggerFactory == nil {
		out.LoggerFactory = func(format string) *slog.Logger {
			return logging.SetDefault(serviceName, version, format)
		}
	}
	return out
}
