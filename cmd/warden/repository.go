// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/credential"
	"github.com/wardenhq/warden/internal/identity"
	"github.com/wardenhq/warden/internal/identity/memory"
	"github.com/wardenhq/warden/internal/identity/postgres"
	"github.com/wardenhq/warden/internal/observability"
	"github.com/wardenhq/warden/internal/store"
)

// storage is an opened identity repository with its readiness probe.
type storage struct {
	repo  identity.Repository
	ready observability.ReadinessChecker
	close func()
}

func openStorage(ctx context.Context, cfg *config.Config, scheme *credential.Scheme, deps *Deps, logger *slog.Logger) (*storage, error) {
	if cfg.Storage.Driver != config.DriverPostgres {
		logger.Warn("using in-memory storage; accounts are lost on exit")
		return &storage{
			repo:  memory.NewRepository(),
			ready: func(context.Context) error { return nil },
			close: func() {},
		}, nil
	}

	pool, err := deps.PoolFactory(ctx, cfg.Storage.DatabaseURL,
		store.WithAttempts(cfg.Storage.ConnectAttempts),
		store.WithLogger(logger),
	)
	if err != nil {
		return nil, oops.With("operation", "connect to database").Wrap(err)
	}
	logger.Info("connected to database")

	return &storage{
		repo:  postgres.NewRepository(pool, scheme),
		ready: pool.Ping,
		close: pool.Close,
	}, nil
}
