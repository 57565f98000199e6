package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"panwatch/internal/agent"
	"panwatch/internal/store"
)

func newRunsCmd(app *App) *cobra.Command {
	var (
		agentFlag  string
		statusFlag string
		limitFlag  int
		sinceFlag  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent agent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			filter := store.RunFilter{
				AgentName: agentFlag,
				Status:    statusFlag,
				Limit:     limitFlag,
			}
			if sinceFlag > 0 {
				filter.Since = time.Now().Add(-sinceFlag)
			}

			runs, err := app.Store.GetRecentRuns(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("loading runs: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}
			if len(runs) == 0 {
				output.Dim("no runs recorded")
				return nil
			}

			for _, r := range runs {
				status := output.Green(string(r.Status))
				if r.Status == agent.RunFailed {
					status = output.Red(string(r.Status))
				}
				output.Printf("%s  %-18s %s  %s\n",
					r.StartedAt.Format("2006-01-02 15:04:05"), r.AgentName,
					status, r.Duration.Round(time.Millisecond))
				if r.ErrorMessage != "" {
					output.Dim("  %s", r.ErrorMessage)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&agentFlag, "agent", "", "filter by agent name")
	cmd.Flags().StringVar(&statusFlag, "status", "", "filter by status: success or failed")
	cmd.Flags().IntVar(&limitFlag, "limit", 20, "maximum rows")
	cmd.Flags().DurationVar(&sinceFlag, "since", 0, "only runs newer than this, e.g. 24h")
	return cmd
}
