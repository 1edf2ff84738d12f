// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/internal/account"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/httpapi"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd(deps *Deps) *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the account API",
		Long: `Serve the account HTTP API and, unless metrics-addr is empty,
the Prometheus metrics and health endpoints.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cmd, cfg, autoMigrate, deps)
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving (postgres only)")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, autoMigrate bool, deps *Deps) error {
	logger := deps.LoggerFactory(cfg.Log.Format)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info("starting warden",
		"version", version,
		"http_addr", cfg.HTTP.Addr,
		"storage", cfg.Storage.Driver,
	)

	if autoMigrate && cfg.Storage.Driver == config.DriverPostgres {
		if err := migrateUp(cfg.Storage.DatabaseURL, deps, logger); err != nil {
			return err
		}
	}

	scheme := cfg.Scheme(deps.SchemeOptions...)
	st, err := openStorage(ctx, cfg, scheme, deps, logger)
	if err != nil {
		return err
	}
	defer st.close()

	accountOpts := []account.Option{account.WithLogger(logger)}
	apiOpts := []httpapi.Option{httpapi.WithLogger(logger)}

	if cfg.Metrics.Addr != "" {
		obs := deps.ObservabilityServerFactory(cfg.Metrics.Addr, st.ready, logger)
		obsErrCh, err := obs.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer stopCancel()
			if err := obs.Stop(stopCtx); err != nil {
				logger.Warn("error stopping observability server", "error", err)
			}
		}()
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability", logger)

		metrics := obs.Metrics()
		accountOpts = append(accountOpts, account.WithRecorder(metrics))
		apiOpts = append(apiOpts, httpapi.WithRecorder(metrics))
	}

	svc, err := account.NewService(st.repo, scheme, accountOpts...)
	if err != nil {
		return oops.With("operation", "create account service").Wrap(err)
	}

	ln, err := deps.Listen(ctx, cfg.HTTP.Addr)
	if err != nil {
		return oops.Code("HTTP_LISTEN_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}

	server := httpapi.NewServer(cfg.HTTP.Addr, httpapi.NewHandler(svc, apiOpts...), logger)
	cmd.Printf("warden listening on %s\n", ln.Addr())

	if err := server.Serve(ctx, ln); err != nil {
		return oops.With("operation", "serve account API").Wrap(err)
	}
	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels ctx when a background server fails.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logger.Error("server failed, shutting down", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}

func migrateUp(url string, deps *Deps, logger *slog.Logger) error {
	m, err := deps.MigratorFactory(url)
	if err != nil {
		return oops.With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("error closing migrator", "error", err)
		}
	}()

	if err := m.Up(); err != nil {
		return oops.With("operation", "apply migrations").Wrap(err)
	}
	logger.Info("migrations applied")
	return nil
}
