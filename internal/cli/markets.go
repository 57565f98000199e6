package cli

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"panwatch/internal/market"
)

func newMarketsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "markets",
		Short: "Show market session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			now := time.Now()

			if output.IsJSON() {
				type status struct {
					Market   string    `json:"market"`
					Name     string    `json:"name"`
					Open     bool      `json:"open"`
					NextOpen time.Time `json:"next_open,omitempty"`
				}
				var states []status
				for _, code := range []market.Code{market.CN, market.HK, market.US} {
					def := market.Get(code)
					st := status{Market: string(code), Name: def.Name, Open: def.IsOpen(now)}
					if !st.Open {
						st.NextOpen = def.NextOpen(now)
					}
					states = append(states, st)
				}
				return output.JSON(states)
			}

			green := color.New(color.FgGreen, color.Bold)
			red := color.New(color.FgRed)

			for _, code := range []market.Code{market.CN, market.HK, market.US} {
				def := market.Get(code)
				local := now.In(def.Location)
				output.Printf("%-3s %-6s %s  ", code, def.Name, local.Format("15:04 MST"))
				if def.IsOpen(now) {
					green.Fprintln(cmd.OutOrStdout(), "OPEN")
				} else {
					next := def.NextOpen(now).In(def.Location)
					red.Fprintf(cmd.OutOrStdout(), "CLOSED (opens %s)\n", next.Format("Mon 15:04"))
				}
			}
			return nil
		},
	}
}
