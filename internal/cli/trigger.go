package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"panwatch/internal/agent"
)

func newTriggerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger <agent>",
		Short: "Run an agent once, immediately",
		Long: `Runs the named agent through the same pipeline a scheduled firing
uses and prints the recorded outcome.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			name := args[0]

			outcome, err := app.Scheduler.TriggerNow(cmd.Context(), name)
			if err != nil && outcome.RunID == "" {
				return fmt.Errorf("trigger %s: %w", name, err)
			}

			if output.IsJSON() {
				return output.JSON(outcome)
			}

			switch outcome.Status {
			case agent.RunSuccess:
				output.Success("run %s finished in %s", outcome.RunID, outcome.Duration.Round(time.Millisecond))
				if outcome.Content != "" {
					output.Println()
					output.Println(outcome.Content)
				}
			case agent.RunFailed:
				output.Error("run %s failed: %s", outcome.RunID, outcome.ErrorMessage)
			}
			return nil
		},
	}
}
