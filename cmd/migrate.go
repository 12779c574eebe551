package main

import (
	"fmt"
	"log"

	"github.com/bwise1/complaint_portal/config"
	"github.com/bwise1/complaint_portal/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDsn(func(dsn string) error { return db.MigrateUp(cmd.Context(), dsn) }, "migrate up")
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDsn(func(dsn string) error { return db.MigrateDown(cmd.Context(), dsn) }, "migrate down")
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of every migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDsn(func(dsn string) error { return db.MigrateStatus(cmd.Context(), dsn) }, "migrate status")
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

func withDsn(fn func(dsn string) error, name string) error {
	cfg := config.New()
	if cfg.Dsn == "" {
		return fmt.Errorf("config: DSN is required")
	}
	if err := fn(cfg.Dsn); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Printf("%s: ok", name)
	return nil
}
