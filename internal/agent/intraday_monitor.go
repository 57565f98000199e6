package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"panwatch/internal/market"
	"panwatch/internal/notify"
	"panwatch/pkg/utils"
)

// moverThresholdPct is the absolute intraday change that flags a symbol.
const moverThresholdPct = 3.0

// IntradayMonitorAgent watches for large intraday moves while markets are
// in session. Watch items whose markets are closed are skipped; when no
// market is open the run is a cheap no-op.
type IntradayMonitorAgent struct {
	BaseAgent
	now func() time.Time
}

// NewIntradayMonitorAgent creates the intraday monitor agent.
func NewIntradayMonitorAgent() *IntradayMonitorAgent {
	return &IntradayMonitorAgent{
		BaseAgent: NewBaseAgent("intraday_monitor", "盘中异动监控"),
		now:       time.Now,
	}
}

// Run checks open markets only and alerts on symbols moving beyond the
// threshold.
func (a *IntradayMonitorAgent) Run(ctx context.Context, rc *Context) (string, error) {
	now := a.now()

	var active []market.WatchItem
	openMarkets := make(map[market.Code]bool)
	for _, item := range rc.Watchlist {
		def := market.Get(item.Market)
		if def == nil {
			continue
		}
		if !openMarkets[item.Market] && def.IsOpen(now) {
			openMarkets[item.Market] = true
		}
		if openMarkets[item.Market] {
			active = append(active, item)
		}
	}

	if len(active) == 0 {
		return "所有市场均已休市", nil
	}

	snap := rc.Collectors.Collect(ctx, active)

	var movers []market.Quote
	for _, quotes := range snap.Quotes {
		for _, q := range quotes {
			if q.ChangePct >= moverThresholdPct || q.ChangePct <= -moverThresholdPct {
				movers = append(movers, q)
			}
		}
	}

	if len(movers) == 0 {
		return fmt.Sprintf("监控 %d 只标的, 无异动", len(active)), nil
	}

	var b strings.Builder
	for _, q := range movers {
		fmt.Fprintf(&b, "%s(%s): %s (%s)\n",
			q.Name, q.Symbol, utils.FormatPrice(q.CurrentPrice), utils.FormatPercent(q.ChangePct))
	}
	msg := strings.TrimRight(b.String(), "\n")

	alert := notify.Notification{
		Type:      notify.NotificationAlert,
		Title:     fmt.Sprintf("盘中异动 (%d 只)", len(movers)),
		Message:   msg,
		Timestamp: now,
	}
	if err := rc.Notifier.Send(ctx, alert); err != nil {
		rc.Logger.Warn().Err(err).Msg("alert delivery failed")
	}

	return msg, nil
}
