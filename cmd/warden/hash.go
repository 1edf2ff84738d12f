// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewHashCmd creates the hash subcommand.
func NewHashCmd(deps *Deps) *cobra.Command {
	var verify string

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Derive or verify a stored credential",
		Long: `Read a password from the first line of stdin and print its serialized
credential ("<salt_hex>:<key_hex>") using the fixed scrypt parameters
and the configured strength policy.

With --verify, check the password against an existing serialized credential
instead. A mismatch exits with an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			password, err := readSecret(cmd)
			if err != nil {
				return err
			}

			scheme := cfg.Scheme(deps.SchemeOptions...)
			if verify != "" {
				cred, err := scheme.Reconstruct(verify)
				if err != nil {
					return oops.With("operation", "parse credential").Wrap(err)
				}
				if !cred.Verify(password) {
					return oops.Code("CREDENTIAL_MISMATCH").Errorf("password does not match credential")
				}
				cmd.Println("OK")
				return nil
			}

			cred, err := scheme.Derive(password)
			if err != nil {
				return oops.With("operation", "derive credential").Wrap(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cred.Export())
			return nil
		},
	}

	cmd.Flags().StringVar(&verify, "verify", "", "serialized credential to check the password against")
	return cmd
}

// readSecret reads one line from the command's input without its line ending.
func readSecret(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", oops.Code("INPUT_REQUIRED").Wrapf(err, "password must be provided on stdin")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
