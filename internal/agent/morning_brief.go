package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"panwatch/internal/market"
	"panwatch/pkg/utils"
)

// MorningBriefAgent prepares a pre-open brief: where each watched market
// stands, the previous close of every watch item, and session times for
// markets not yet open.
type MorningBriefAgent struct {
	BaseAgent
	now func() time.Time
}

// NewMorningBriefAgent creates the morning brief agent.
func NewMorningBriefAgent() *MorningBriefAgent {
	return &MorningBriefAgent{
		BaseAgent: NewBaseAgent("morning_brief", "早盘简报"),
		now:       time.Now,
	}
}

// Run builds the brief from the latest available quotes.
func (a *MorningBriefAgent) Run(ctx context.Context, rc *Context) (string, error) {
	now := a.now()
	snap := rc.Collectors.Collect(ctx, rc.Watchlist)

	var b strings.Builder
	b.WriteString("【市场状态】\n")
	for _, code := range marketOrder {
		def := market.Get(code)
		if def.IsOpen(now) {
			fmt.Fprintf(&b, "%s: 交易中\n", def.Name)
		} else {
			next := def.NextOpen(now)
			fmt.Fprintf(&b, "%s: 休市, 下次开盘 %s\n", def.Name, next.Format("01-02 15:04 MST"))
		}
	}
	b.WriteString("\n")

	if len(snap.Indices) > 0 {
		b.WriteString("【大盘指数】\n")
		for _, idx := range snap.Indices {
			fmt.Fprintf(&b, "%s: %s (%s)\n",
				idx.Name, utils.FormatPrice(idx.CurrentPrice), utils.FormatPercent(idx.ChangePct))
		}
		b.WriteString("\n")
	}

	b.WriteString("【自选股昨收】\n")
	quoted := make(map[string]market.Quote)
	for code, quotes := range snap.Quotes {
		for _, q := range quotes {
			quoted[string(code)+":"+q.Symbol] = q
		}
	}
	for _, item := range rc.Watchlist {
		q, ok := quoted[string(item.Market)+":"+item.Symbol]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s(%s): 昨收 %s\n", q.Name, q.Symbol, utils.FormatPrice(q.PrevClose))
	}

	body := strings.TrimRight(b.String(), "\n")

	title := fmt.Sprintf("早盘简报 %s", now.Format("2006-01-02"))
	if err := rc.Notifier.SendReport(ctx, a.Name(), title, body); err != nil {
		rc.Logger.Warn().Err(err).Msg("brief delivery failed")
	}

	return body, nil
}
