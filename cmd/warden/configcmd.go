// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wardenhq/warden/internal/config"
)

// NewConfigCmd creates the config inspection commands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := config.Schema()
			if err != nil {
				return err //nolint:wrapcheck // config errors are already coded
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate FILE",
		Short: "Check a config file against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return oops.Code("CONFIG_READ_FAILED").With("path", args[0]).Wrap(err)
			}
			if err := config.ValidateYAML(data); err != nil {
				return oops.With("path", args[0]).Wrap(err)
			}
			cmd.Printf("%s is valid\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Storage.DatabaseURL = redactURL(cfg.Storage.DatabaseURL)

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(toYAML(cfg)); err != nil {
				return oops.With("operation", "encode config").Wrap(err)
			}
			return enc.Close() //nolint:wrapcheck // flush only
		},
	})

	return cmd
}

// redactURL hides the password component of a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[REDACTED]"
	}
	return u.Redacted()
}

// toYAML mirrors Config with yaml keys matching the file format.
func toYAML(cfg *config.Config) map[string]any {
	return map[string]any{
		"http":    map[string]any{"addr": cfg.HTTP.Addr},
		"metrics": map[string]any{"addr": cfg.Metrics.Addr},
		"log":     map[string]any{"format": cfg.Log.Format},
		"storage": map[string]any{
			"driver":           cfg.Storage.Driver,
			"database_url":     cfg.Storage.DatabaseURL,
			"connect_attempts": cfg.Storage.ConnectAttempts,
		},
		"credential": map[string]any{
			"policy": map[string]any{
				"min_length":  cfg.Credential.Policy.MinLength,
				"min_upper":   cfg.Credential.Policy.MinUpper,
				"min_lower":   cfg.Credential.Policy.MinLower,
				"min_digits":  cfg.Credential.Policy.MinDigits,
				"min_symbols": cfg.Credential.Policy.MinSymbols,
			},
		},
	}
}
