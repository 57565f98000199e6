package agent

import (
	"fmt"
	"sort"
	"strings"

	"panwatch/internal/collector"
	"panwatch/internal/market"
	"panwatch/pkg/utils"
)

// marketOrder fixes the section order of reports.
var marketOrder = []market.Code{market.CN, market.HK, market.US}

// formatSnapshot renders a collected snapshot as the plain-text body used
// by report agents and as the data block handed to the AI prompt.
func formatSnapshot(snap *collector.Snapshot, watchlist []market.WatchItem) string {
	var b strings.Builder

	if len(snap.Indices) > 0 {
		b.WriteString("【大盘指数】\n")
		for _, idx := range snap.Indices {
			fmt.Fprintf(&b, "%s: %s (%s)\n",
				idx.Name, utils.FormatPrice(idx.CurrentPrice), utils.FormatPercent(idx.ChangePct))
		}
		b.WriteString("\n")
	}

	positions := make(map[string]market.WatchItem)
	for _, item := range watchlist {
		if item.HasPosition() {
			positions[string(item.Market)+":"+item.Symbol] = item
		}
	}

	for _, code := range marketOrder {
		quotes := snap.Quotes[code]
		if len(quotes) == 0 {
			continue
		}
		sort.Slice(quotes, func(i, j int) bool {
			return quotes[i].ChangePct > quotes[j].ChangePct
		})

		def := market.Get(code)
		fmt.Fprintf(&b, "【%s】\n", def.Name)
		for _, q := range quotes {
			fmt.Fprintf(&b, "%s(%s): %s (%s)",
				q.Name, q.Symbol, utils.FormatPrice(q.CurrentPrice), utils.FormatPercent(q.ChangePct))
			if item, ok := positions[string(code)+":"+q.Symbol]; ok {
				pnl := (q.CurrentPrice - item.CostPrice) * item.Quantity
				pnlPct := 0.0
				if item.CostPrice > 0 {
					pnlPct = (q.CurrentPrice - item.CostPrice) / item.CostPrice * 100
				}
				fmt.Fprintf(&b, " 持仓盈亏: %s (%s)", utils.FormatAmount(pnl), utils.FormatPercent(pnlPct))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// totalPnL sums realized position P&L across the snapshot. Items without a
// quote in the snapshot contribute nothing.
func totalPnL(snap *collector.Snapshot, watchlist []market.WatchItem) (pnl float64, held int) {
	quoted := make(map[string]market.Quote)
	for code, quotes := range snap.Quotes {
		for _, q := range quotes {
			quoted[string(code)+":"+q.Symbol] = q
		}
	}
	for _, item := range watchlist {
		if !item.HasPosition() {
			continue
		}
		q, ok := quoted[string(item.Market)+":"+item.Symbol]
		if !ok {
			continue
		}
		pnl += (q.CurrentPrice - item.CostPrice) * item.Quantity
		held++
	}
	return pnl, held
}
