package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"panwatch/internal/errors"
	"panwatch/internal/store"
)

// shutdownGrace bounds how long serve waits for in-flight runs on exit.
const shutdownGrace = 30 * time.Second

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the agent scheduler",
		Long: `Seeds the default agents on first start, registers every enabled
agent on its stored schedule and runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable, cannot serve")
			}

			ctx := cmd.Context()
			if err := app.Store.SeedAgents(ctx, store.DefaultAgentSeeds); err != nil {
				return fmt.Errorf("seeding agents: %w", err)
			}

			configs, err := app.Store.GetAgentConfigs(ctx, true)
			if err != nil {
				return fmt.Errorf("loading agent configs: %w", err)
			}

			registered := 0
			for _, c := range configs {
				if err := app.Scheduler.Register(c.Name, c.Schedule); err != nil {
					if errors.Is(err, errors.ErrInvalidTriggerFormat) {
						app.Logger.Error().Err(err).Str("agent", c.Name).
							Msg("invalid schedule, agent not armed")
						output.Warning("skipping %s: %v", c.Name, err)
						continue
					}
					if errors.Is(err, errors.ErrUnknownAgent) {
						app.Logger.Error().Str("agent", c.Name).
							Msg("no implementation for configured agent")
						output.Warning("skipping %s: no such agent", c.Name)
						continue
					}
					return err
				}
				registered++
			}

			if registered == 0 {
				output.Warning("no agents armed, nothing to schedule")
				return nil
			}

			app.Scheduler.Start()
			output.Success("scheduler running with %d agent(s), press Ctrl-C to stop", registered)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			select {
			case <-sigCh:
			case <-ctx.Done():
			}

			output.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := app.Scheduler.Shutdown(shutdownCtx); err != nil {
				output.Warning("shutdown: %v", err)
				return nil
			}
			output.Success("stopped")
			return nil
		},
	}
}
