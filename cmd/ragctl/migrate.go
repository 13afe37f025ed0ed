package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"docrag/internal/config"
	"docrag/internal/database"
	"docrag/internal/database/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema if it does not exist",
	Long: `Creates tables, the pgvector extension and indexes. The chunk embedding
column is sized from EMBEDDING_DIM, so run this with the same settings as the API.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	logger := newLogger(cfg)
	db, err := database.NewPostgres(cmd.Context(), cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(cmd.Context(), db, logger, cfg.Database.Host, cfg.Embedding.Dimension); err != nil {
		return err
	}
	cmd.Println("Schema is up to date.")
	return nil
}
