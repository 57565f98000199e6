package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"panwatch/internal/scheduler"
)

func newAgentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage configured agents",
	}

	cmd.AddCommand(newAgentsListCmd(app))
	cmd.AddCommand(newAgentsEnableCmd(app, true))
	cmd.AddCommand(newAgentsEnableCmd(app, false))
	cmd.AddCommand(newAgentsScheduleCmd(app))

	return cmd
}

func newAgentsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List agents with their schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			configs, err := app.Store.GetAgentConfigs(cmd.Context(), false)
			if err != nil {
				return fmt.Errorf("loading agent configs: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(configs)
			}

			if len(configs) == 0 {
				output.Dim("no agents configured, run 'panwatch serve' once to seed defaults")
				return nil
			}

			for _, c := range configs {
				state := output.Red("disabled")
				if c.Enabled {
					state = output.Green("enabled")
				}
				output.Printf("%-18s %-10s %s\n", c.Name, state, c.Schedule)
				if c.Description != "" {
					output.Dim("  %s", c.Description)
				}
				if app.Registry.Lookup(c.Name) == nil {
					output.Warning("  no implementation registered")
				}
				if next, err := app.Scheduler.NextRun(c.Name); err == nil {
					output.Dim("  next run: %s", next.Format("2006-01-02 15:04:05"))
				}
			}
			return nil
		},
	}
}

func newAgentsEnableCmd(app *App, enable bool) *cobra.Command {
	use, short := "enable <agent>", "Enable an agent"
	if !enable {
		use, short = "disable <agent>", "Disable an agent"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}
			if err := app.Store.SetAgentEnabled(cmd.Context(), args[0], enable); err != nil {
				return fmt.Errorf("updating agent %s: %w", args[0], err)
			}
			if enable {
				output.Success("%s enabled", args[0])
			} else {
				output.Success("%s disabled", args[0])
			}
			return nil
		},
	}
}

func newAgentsScheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <agent> <trigger>",
		Short: "Change an agent's trigger expression",
		Long: `Sets the agent's schedule. The trigger is either a five-field cron
expression like "30 15 * * 1-5" or an interval like "interval:30m".
The new schedule takes effect the next time the scheduler starts.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			name, trigger := args[0], args[1]
			if _, err := scheduler.ParseTrigger(trigger); err != nil {
				return err
			}
			if err := app.Store.SetAgentSchedule(cmd.Context(), name, trigger); err != nil {
				return fmt.Errorf("updating agent %s: %w", name, err)
			}
			output.Success("%s scheduled: %s", name, trigger)
			return nil
		},
	}
}
