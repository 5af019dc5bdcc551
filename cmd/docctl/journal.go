package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salesdocs/internal/app"
	"salesdocs/internal/infrastructure/storage/postgres"
)

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Read the reconciliation journal",
	}

	burned := &cobra.Command{
		Use:   "burned",
		Short: "List document codes that were allocated but never stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				return fmt.Errorf("limit must be positive")
			}
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				entries, err := c.Journal.Entries(ctx, postgres.ActionSequenceBurned, limit)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "CODE\tAT\tDETAIL")
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t%s\t%s\n", e.EntityKey, e.CreatedAt.Format("2006-01-02 15:04:05"), string(e.Payload))
				}
				return w.Flush()
			})
		},
	}
	burned.Flags().Int("limit", 50, "Maximum number of entries")
	cmd.AddCommand(burned)

	return cmd
}
