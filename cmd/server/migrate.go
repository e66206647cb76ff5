package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Apply the schema to FREIGHT_DB_PATH. Migrations are idempotent; the server
also applies them on startup.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("migrations applied", "db", cfg.DB.Path)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema up to date: %s\n", cfg.DB.Path)
	return nil
}
