package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"panwatch/internal/collector"
	"panwatch/internal/market"
	"panwatch/pkg/utils"
)

func newQuoteCmd(app *App) *cobra.Command {
	var marketFlag string

	cmd := &cobra.Command{
		Use:   "quote <symbol>...",
		Short: "Fetch live quotes for one or more symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			code := market.ParseCode(marketFlag)
			group := collector.NewGroup(app.Config.Collector, app.Logger)
			c := group.ForMarket(code)
			if c == nil {
				return fmt.Errorf("no collector for market %s", code)
			}

			quotes := c.FetchQuotes(cmd.Context(), args)
			if output.IsJSON() {
				return output.JSON(quotes)
			}
			if len(quotes) == 0 {
				output.Warning("no quotes returned")
				return nil
			}

			for _, q := range quotes {
				change := utils.FormatPercent(q.ChangePct)
				if q.ChangePct >= 0 {
					change = output.Green(change)
				} else {
					change = output.Red(change)
				}
				output.Printf("%-8s %-10s %10s  %s  成交额 %s\n",
					q.Symbol, q.Name, utils.FormatPrice(q.CurrentPrice), change,
					utils.FormatAmount(q.Turnover))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&marketFlag, "market", "m", "CN", "market: CN, HK or US")
	return cmd
}
