// Package migrate implements the `forgegate migrate` command family.
package migrate

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgegate-inc/forgegate/internal/infrastructure/config"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/database"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/migration"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back, and inspect database migrations.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, driver, err := openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()
			return migration.Up(cmd.Context(), db, driver)
		},
	}
}

func newDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, driver, err := openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()
			return migration.Down(cmd.Context(), db, driver)
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, driver, err := openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()
			return migration.Status(cmd.Context(), db, driver)
		},
	}
}

func openDatabase() (*sql.DB, string, error) {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, "", fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, "", fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := database.Get().DB()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB, cfg.Database.Driver, nil
}
