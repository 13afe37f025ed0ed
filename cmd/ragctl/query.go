package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"docrag/internal/model"
	"docrag/internal/service"
)

var queryTopK int

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question as a workspace member",
	Long: `Runs the same policy-filtered retrieval as the HTTP endpoint. Only passages
whose document label the acting user's role allows are cited.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	addWorkspaceFlags(queryCmd)
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of passages to cite (0 uses the server default)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	return withActor(cmd, func(ctx context.Context, e *env, actor model.Actor) error {
		res, err := e.services.Query.Query(ctx, actor, workspaceID, question, queryTopK)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, res)
		}
		printQueryResult(cmd, res)
		return nil
	})
}

func printQueryResult(cmd *cobra.Command, res *service.QueryResult) {
	cmd.Println(res.Answer)
	cmd.Println()
	for i, c := range res.Citations {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, c.SourceTitle, c.Score)
		if c.SourceURL != nil {
			cmd.Printf("      %s\n", *c.SourceURL)
		}
	}
	p := res.Policy
	cmd.Printf("\nrole=%s candidates=%d returned=%d filtered_by_policy=%d\n",
		p.AccessRole, p.CandidateResults, p.ReturnedResults, p.FilteredByPolicy)
}
