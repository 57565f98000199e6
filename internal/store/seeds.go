package store

// DefaultAgentSeeds is the initial agent set inserted on first start.
// Seeding never overwrites rows the user has since edited.
//
// The news_digest row carries a six-field expression inherited from an
// earlier data set. It fails trigger parsing and is reported at
// registration time; it is kept so the row surfaces in listings instead
// of vanishing silently.
var DefaultAgentSeeds = []AgentConfig{
	{
		Name:        "daily_report",
		DisplayName: "每日收盘报告",
		Description: "Collects a full watchlist snapshot after the close and sends a summary report.",
		Enabled:     true,
		Schedule:    "30 15 * * 1-5",
	},
	{
		Name:        "intraday_monitor",
		DisplayName: "盘中异动监控",
		Description: "Watches for large intraday moves while markets are in session.",
		Enabled:     false,
		Schedule:    "*/30 9-15 * * 1-5",
	},
	{
		Name:        "news_digest",
		DisplayName: "新闻摘要",
		Description: "Aggregates market news for watched symbols.",
		Enabled:     false,
		Schedule:    "0 */2 9-18 * * 1-5",
	},
	{
		Name:        "morning_brief",
		DisplayName: "早盘简报",
		Description: "Pre-open brief with market status and previous closes.",
		Enabled:     false,
		Schedule:    "0 9 * * 1-5",
	},
}
