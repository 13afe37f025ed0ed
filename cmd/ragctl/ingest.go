package main

import (
	"context"

	"github.com/spf13/cobra"

	"docrag/internal/model"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest-demo",
	Short: "Replace a workspace corpus with the demo documents",
	Long: `Loads every .txt file from DEMO_DATA_DIR, chunks and embeds it, and replaces
the workspace's documents. The acting user must be a workspace admin.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	addWorkspaceFlags(ingestCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	return withActor(cmd, func(ctx context.Context, e *env, actor model.Actor) error {
		res, err := e.services.Documents.IngestDemo(ctx, actor, workspaceID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, res)
		}
		cmd.Printf("Ingested %d documents (%d chunks).\n", res.Documents, res.Chunks)
		return nil
	})
}
