package main

import (
	"fmt"
	"os"

	"roundup/internal/config"
	"roundup/internal/db"
	"roundup/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var migrationsDir string

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Apply and inspect database migrations",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every migration that has not run yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(database *sqlx.DB) error {
			applied, err := migrateUp(database, migrationsDir)
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			if err == nil && len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to apply")
			}
			return err
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they have been applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(database *sqlx.DB) error {
			states, err := migrationStatus(database, migrationsDir)
			if err != nil {
				return err
			}
			for _, state := range states {
				mark := "pending"
				if state.Applied {
					mark = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", mark, state.Name)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "directory holding *.sql migrations")
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(statusCmd)
}

func withDatabase(fn func(*sqlx.DB) error) error {
	cfg := config.Load()
	logger.Configure(cfg.LogLevel, cfg.AppEnv)
	database, err := db.Connect(cfg.DatabaseURL, db.PoolConfig{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()
	return fn(database)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Errorf("migrate: %v", err)
		os.Exit(1)
	}
}
