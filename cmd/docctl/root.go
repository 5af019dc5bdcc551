package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"salesdocs/internal/app"
	"salesdocs/internal/config"
	"salesdocs/pkg/logger"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docctl",
		Short: "Admin CLI for the salesdocs document engine",
		Long: `docctl maintains the document engine out of band: it inspects and moves
document sequences, refreshes warranty statuses, applies the database schema
and lists burned document codes for reconciliation.

Configuration is read from the environment (and .env), exactly as the server does.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSequenceCmd(),
		newWarrantyCmd(),
		newSchemaCmd(),
		newJournalCmd(),
		newTokenCmd(),
	)
	return root
}

// withContainer loads config and connects to the stores for one command.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: true,
		OutputPaths: []string{"stderr"},
		Service:     "docctl",
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	ctx := logger.WithLogger(cmd.Context(), log.WithComponent("cli"))

	c, err := app.Build(ctx, cfg, log, app.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return fn(ctx, c)
}
