package agent

import (
	"context"
	"fmt"
	"time"

	"panwatch/internal/errors"
	"panwatch/pkg/utils"
)

const dailyReportSystemPrompt = `你是一位专业的证券分析师。根据提供的行情数据撰写一份简明的收盘总结，
涵盖大盘走势、持仓表现和值得关注的个股异动。使用中文，篇幅控制在300字以内。`

// DailyReportAgent produces the end-of-day summary: a full snapshot of the
// watchlist with index levels and position P&L, optionally enriched with an
// AI-written commentary, delivered through the configured channels.
type DailyReportAgent struct {
	BaseAgent
}

// NewDailyReportAgent creates the daily report agent.
func NewDailyReportAgent() *DailyReportAgent {
	return &DailyReportAgent{BaseAgent: NewBaseAgent("daily_report", "每日收盘报告")}
}

// Run collects a snapshot of the full watchlist and builds the report.
func (a *DailyReportAgent) Run(ctx context.Context, rc *Context) (string, error) {
	snap := rc.Collectors.Collect(ctx, rc.Watchlist)
	if snap.TotalQuotes() == 0 && len(snap.Indices) == 0 {
		return "", errors.NewAgentError(a.Name(), "collect",
			fmt.Errorf("no quotes returned for %d watch items", len(rc.Watchlist)))
	}

	body := formatSnapshot(snap, rc.Watchlist)

	pnl, held := totalPnL(snap, rc.Watchlist)
	if held > 0 {
		body += fmt.Sprintf("\n\n【持仓合计】%d 只持仓, 当日盈亏 %s", held, utils.FormatAmount(pnl))
	}

	if rc.AI != nil {
		commentary, err := rc.AI.CompleteWithSystem(ctx, dailyReportSystemPrompt, body)
		if err != nil {
			rc.Logger.Warn().Err(err).Msg("AI commentary unavailable, sending data-only report")
		} else if commentary != "" {
			body += "\n\n【分析师点评】\n" + commentary
		}
	}

	title := fmt.Sprintf("收盘报告 %s", time.Now().Format("2006-01-02"))
	if err := rc.Notifier.SendReport(ctx, a.Name(), title, body); err != nil {
		rc.Logger.Warn().Err(err).Msg("report delivery failed")
	}

	return body, nil
}
