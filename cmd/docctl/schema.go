package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"salesdocs/internal/app"
	"salesdocs/internal/infrastructure/storage/postgres"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Database schema management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the schema DDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), postgres.Schema())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Create missing tables and indexes (idempotent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				if err := postgres.ApplySchema(ctx, c.Pool); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
				return nil
			})
		},
	})

	return cmd
}
