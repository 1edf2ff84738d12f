// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/xdg"
)

// NewRootCmd creates the root command with production dependencies.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "warden",
		Short: "Warden - account credential service",
		Long: `Warden registers and authenticates user accounts. Passwords are
stretched with scrypt and never stored or returned in plaintext.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (default: $XDG_CONFIG_HOME/warden/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd(deps))
	cmd.AddCommand(NewMigrateCmd(deps))
	cmd.AddCommand(NewHashCmd(deps))
	cmd.AddCommand(NewUserCmd(deps))
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// loadConfig loads configuration using the --config file (or the XDG
// default when present) and the flags visible to cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		path = xdg.ConfigFile()
	}
	//nolint:wrapcheck // config errors are already coded
	return config.Load(path, cmd.Flags())
}

// NewVersionCmd creates the version subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Printf("%s %s\ncommit: %s\nbuilt: %s\n", serviceName, version, commit, date)
			return nil
		},
	}
}
