package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docrag/internal/model"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recent audit events of a workspace",
	Long:  `Prints the newest events first. The acting user must be a workspace admin.`,
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

func init() {
	addWorkspaceFlags(auditCmd)
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "maximum number of events")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	return withActor(cmd, func(ctx context.Context, e *env, actor model.Actor) error {
		events, err := e.services.Audit.List(ctx, actor, workspaceID, auditLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, events)
		}
		if len(events) == 0 {
			cmd.Println("No audit events.")
			return nil
		}
		for _, ev := range events {
			user := "-"
			if ev.UserID != nil {
				user = *ev.UserID
			}
			payload, _ := json.Marshal(ev.Payload)
			cmd.Printf("%s  %-28s %-8s %s %s\n",
				ev.CreatedAt.Format(time.RFC3339), ev.Action, ev.Outcome, user, payload)
		}
		return nil
	})
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
