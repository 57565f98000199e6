// Package collector provides per-market quote collection from the upstream
// quote feed, with symbol translation and resilient response parsing.
package collector

import (
	"context"

	"github.com/rs/zerolog"

	"panwatch/internal/config"
	"panwatch/internal/market"
)

// Collector fetches normalized quotes for one market. Implementations must
// contain failures at their own boundary: a transport or parse error yields
// an empty result and a logged error, never a propagated one, so that one
// market's outage cannot block collection for the others.
type Collector interface {
	// Market returns the market this collector serves.
	Market() market.Code
	// FetchQuotes issues one batched request for all symbols and returns
	// the quotes that parsed successfully.
	FetchQuotes(ctx context.Context, symbols []string) []market.Quote
	// FetchIndices returns broad-market index quotes. Only the domestic
	// market defines indices; other markets return an empty slice.
	FetchIndices(ctx context.Context) []market.IndexQuote
}

// Group bundles one collector per market and assembles watchlist snapshots.
type Group struct {
	collectors map[market.Code]Collector
}

// NewGroup creates a Group with a Tencent-feed collector per predefined market.
func NewGroup(cfg config.CollectorConfig, logger zerolog.Logger) *Group {
	g := &Group{collectors: make(map[market.Code]Collector)}
	for code, def := range market.Markets {
		g.collectors[code] = NewTencentCollector(def, cfg, logger)
	}
	return g
}

// NewGroupWith creates a Group from explicit collectors. Used by tests and
// by callers that substitute a single market's source.
func NewGroupWith(collectors ...Collector) *Group {
	g := &Group{collectors: make(map[market.Code]Collector)}
	for _, c := range collectors {
		g.collectors[c.Market()] = c
	}
	return g
}

// ForMarket returns the collector serving the given market, or nil.
func (g *Group) ForMarket(code market.Code) Collector {
	return g.collectors[code]
}

// Snapshot is the aggregate quote state for a watchlist at one instant.
type Snapshot struct {
	Quotes  map[market.Code][]market.Quote
	Indices []market.IndexQuote
}

// TotalQuotes returns the number of quotes across all markets.
func (s *Snapshot) TotalQuotes() int {
	n := 0
	for _, qs := range s.Quotes {
		n += len(qs)
	}
	return n
}

// Collect groups the watchlist by market, issues exactly one batched fetch
// per distinct market plus one index fetch for the domestic market, and
// returns whatever data came back. Markets that fail contribute nothing.
func (g *Group) Collect(ctx context.Context, items []market.WatchItem) *Snapshot {
	byMarket := make(map[market.Code][]string)
	for _, item := range items {
		byMarket[item.Market] = append(byMarket[item.Market], item.Symbol)
	}

	snap := &Snapshot{Quotes: make(map[market.Code][]market.Quote)}
	for code, symbols := range byMarket {
		c := g.collectors[code]
		if c == nil {
			continue
		}
		if quotes := c.FetchQuotes(ctx, symbols); len(quotes) > 0 {
			snap.Quotes[code] = quotes
		}
	}

	if cn := g.collectors[market.CN]; cn != nil {
		snap.Indices = cn.FetchIndices(ctx)
	}
	return snap
}
