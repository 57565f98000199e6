package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"panwatch/internal/errors"
	"panwatch/internal/market"
)

func newWatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the watchlist",
	}

	cmd.AddCommand(newWatchAddCmd(app))
	cmd.AddCommand(newWatchRemoveCmd(app))
	cmd.AddCommand(newWatchListCmd(app))

	return cmd
}

func newWatchAddCmd(app *App) *cobra.Command {
	var (
		marketFlag string
		nameFlag   string
		costFlag   float64
		qtyFlag    float64
		agentsFlag []string
	)

	cmd := &cobra.Command{
		Use:   "add <symbol>",
		Short: "Add a symbol to the watchlist",
		Long: `Adds a symbol. The market defaults to CN; pass --market HK or
--market US for the others. Position data is optional and only used
for P&L lines in reports.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			symbol := args[0]
			code := market.ParseCode(marketFlag)
			def := market.Get(code)
			if !def.ValidSymbol(symbol) {
				return errors.Wrapf(errors.ErrInvalidSymbol, "%s is not a valid %s symbol", symbol, code)
			}

			item := market.WatchItem{
				Symbol:    symbol,
				Name:      nameFlag,
				Market:    code,
				CostPrice: costFlag,
				Quantity:  qtyFlag,
			}
			if err := app.Store.AddWatchItem(cmd.Context(), item, agentsFlag); err != nil {
				return fmt.Errorf("adding %s: %w", symbol, err)
			}
			output.Success("added %s/%s", code, symbol)
			return nil
		},
	}

	cmd.Flags().StringVarP(&marketFlag, "market", "m", "CN", "market: CN, HK or US")
	cmd.Flags().StringVar(&nameFlag, "name", "", "display name")
	cmd.Flags().Float64Var(&costFlag, "cost", 0, "position cost price")
	cmd.Flags().Float64Var(&qtyFlag, "qty", 0, "position quantity")
	cmd.Flags().StringSliceVar(&agentsFlag, "agents", nil, "restrict the item to these agents")
	return cmd
}

func newWatchRemoveCmd(app *App) *cobra.Command {
	var marketFlag string

	cmd := &cobra.Command{
		Use:   "remove <symbol>",
		Short: "Remove a symbol from the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}
			code := market.ParseCode(marketFlag)
			if err := app.Store.RemoveWatchItem(cmd.Context(), args[0], code); err != nil {
				return fmt.Errorf("removing %s: %w", args[0], err)
			}
			output.Success("removed %s/%s", code, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&marketFlag, "market", "m", "CN", "market: CN, HK or US")
	return cmd
}

func newWatchListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List watched symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			items, err := app.Store.GetWatchlist(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading watchlist: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(items)
			}
			if len(items) == 0 {
				output.Dim("watchlist is empty")
				return nil
			}
			for _, item := range items {
				line := fmt.Sprintf("%-3s %-8s %s", item.Market, item.Symbol, item.Name)
				if item.HasPosition() {
					line += fmt.Sprintf("  cost %.2f x %.0f", item.CostPrice, item.Quantity)
				}
				output.Println(line)
			}
			return nil
		},
	}
}
