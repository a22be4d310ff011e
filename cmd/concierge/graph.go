package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/concierge/internal/cli"
	"github.com/aretw0/concierge/internal/presentation/graph"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/spf13/cobra"
)

// offline stands in for the planner when a command only inspects the wiring.
var offline = ports.PlannerFunc(func(ctx context.Context, req ports.PlanRequest) (domain.PlanResult, error) {
	return nil, errors.New("planner not available in this command")
})

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the agent routing graph",
	Long: `Outputs a Mermaid diagram (graph TD) of the agents, their handoffs and their tools.
With --thread, the thread's active agent and pending action are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		threadID, _ := cmd.Flags().GetString("thread")

		app, err := cli.Build(cmd.Context(), cfg, logger, cli.WithPlanner(offline))
		if err != nil {
			return err
		}
		defer app.Close()

		var overlay *graph.Overlay
		if threadID != "" {
			sess, err := app.Engine.Session(cmd.Context(), threadID)
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", threadID, err)
			}
			overlay = &graph.Overlay{ActiveAgent: sess.ActiveAgent}
			if sess.Pending != nil {
				overlay.PendingTool = sess.Pending.Call.Name
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(app.Engine.Roster(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("thread", "", "Highlight the state of this thread")
}
