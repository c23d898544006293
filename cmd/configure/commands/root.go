package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/benvon/devotional/internal/config"
	"github.com/benvon/devotional/internal/database"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the admin command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "devotional-configure",
		Short:         "Administration tool for the devotional API",
		Long:          "CLI tool for schema migrations, profile inspection and generative service checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewMigrateCmd())
	rootCmd.AddCommand(NewProfileCmd())
	rootCmd.AddCommand(NewPlanCmd())
	rootCmd.AddCommand(NewAICmd())
	return rootCmd
}

// openDB loads configuration and connects to the configured database
func openDB(ctx context.Context) (*config.Config, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.New(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, db, nil
}

func closeDB(db *database.DB, stderr io.Writer) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(stderr, "Warning: failed to close database: %v\n", err)
	}
}
