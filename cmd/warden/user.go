// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/internal/account"
)

// NewUserCmd creates the user administration commands.
func NewUserCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Administer stored accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts ordered by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAccounts(cmd, deps, func(ctx context.Context, svc *account.Service) error {
				all, err := svc.List(ctx)
				if err != nil {
					return err //nolint:wrapcheck // service errors carry context
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tBIRTHDAY\tAGE\tADULT\tTEEN\tBIRTHDAY_TODAY")
				for _, ident := range all {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
						ident.ID(), ident.DisplayName(), ident.Email(), ident.BirthDate(), ident.Age(),
						yesNo(ident.IsAdult()), yesNo(ident.IsTeen()), yesNo(ident.IsBirthdayToday()))
				}
				if err := tw.Flush(); err != nil {
					return oops.With("operation", "write account list").Wrap(err)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show one account and its age predicates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(cmd, deps, func(ctx context.Context, svc *account.Service) error {
				ident, err := svc.Get(ctx, args[0])
				if err != nil {
					return err //nolint:wrapcheck // service errors carry context
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "ID:\t%s\n", ident.ID())
				fmt.Fprintf(tw, "Username:\t%s\n", ident.DisplayName())
				fmt.Fprintf(tw, "Email:\t%s\n", ident.Email())
				fmt.Fprintf(tw, "Birthday:\t%s\n", ident.BirthDate())
				fmt.Fprintf(tw, "Age:\t%d\n", ident.Age())
				fmt.Fprintf(tw, "Adult:\t%s\n", yesNo(ident.IsAdult()))
				fmt.Fprintf(tw, "Teen:\t%s\n", yesNo(ident.IsTeen()))
				fmt.Fprintf(tw, "Birthday today:\t%s\n", yesNo(ident.IsBirthdayToday()))
				if err := tw.Flush(); err != nil {
					return oops.With("operation", "write account").Wrap(err)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Delete an account; unknown ids are ignored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAccounts(cmd, deps, func(ctx context.Context, svc *account.Service) error {
				if err := svc.Remove(ctx, args[0]); err != nil {
					return err //nolint:wrapcheck // service errors carry context
				}
				cmd.Printf("Deleted %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func withAccounts(cmd *cobra.Command, deps *Deps, fn func(context.Context, *account.Service) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := deps.LoggerFactory(cfg.Log.Format)
	scheme := cfg.Scheme(deps.SchemeOptions...)

	st, err := openStorage(ctx, cfg, scheme, deps, logger)
	if err != nil {
		return err
	}
	defer st.close()

	svc, err := account.NewService(st.repo, scheme, account.WithLogger(logger))
	if err != nil {
		return oops.With("operation", "create account service").Wrap(err)
	}
	return fn(ctx, svc)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
