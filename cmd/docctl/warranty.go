package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"salesdocs/internal/app"
)

func newWarrantyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warranty",
		Short: "Warranty maintenance",
	}

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Persist expired status for warranties past their end date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asOf, _ := cmd.Flags().GetString("as-of")
			now := time.Now()
			if asOf != "" {
				parsed, err := time.Parse("2006-01-02", asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of date. Use YYYY-MM-DD: %w", err)
				}
				now = parsed
			}
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				n, err := c.Warranties.RefreshStatuses(ctx, now)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d warranties expired\n", n)
				return nil
			})
		},
	}
	refresh.Flags().String("as-of", "", "Reference date (YYYY-MM-DD, default: now)")
	cmd.AddCommand(refresh)

	return cmd
}
