package main

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the catalog database schema",
	Long: `Manage the catalog database schema.

Subcommands:
  up      - Apply pending migrations
  status  - Show migration status`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, cfg *config.Config, db *sql.DB) error {
			log, err := logger.New(cfg.Server.Env)
			if err != nil {
				return err
			}
			defer log.Sync()
			return database.RunMigrations(ctx, db, cfg.Server.MigrationsDir, log)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, cfg *config.Config, db *sql.DB) error {
			return database.MigrationStatus(ctx, db, cfg.Server.MigrationsDir)
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func withDatabase(ctx context.Context, fn func(context.Context, *config.Config, *sql.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.Load()
	dbService, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer dbService.Close()

	return fn(ctx, cfg, dbService.DB())
}
