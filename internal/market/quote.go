package market

import "time"

// Quote is a normalized stock quote. Fields absent upstream default to 0
// so downstream arithmetic never deals with null values.
type Quote struct {
	Symbol       string
	Name         string
	Market       Code
	CurrentPrice float64
	ChangePct    float64
	ChangeAmount float64
	Volume       float64
	Turnover     float64
	Open         float64
	High         float64
	Low          float64
	PrevClose    float64
	Timestamp    time.Time
}

// IndexQuote is a normalized broad-market index quote.
type IndexQuote struct {
	Symbol       string
	Name         string
	Market       Code
	CurrentPrice float64
	ChangePct    float64
	ChangeAmount float64
	Volume       float64
	Turnover     float64
	Timestamp    time.Time
}

// WatchItem is one watchlist row: a symbol, its market, and optional
// position data used for P&L lines in agent reports.
type WatchItem struct {
	Symbol    string
	Name      string
	Market    Code
	CostPrice float64 // 0 when no position is held
	Quantity  float64 // 0 when no position is held
}

// HasPosition reports whether the item carries position data.
func (w WatchItem) HasPosition() bool {
	return w.CostPrice > 0 && w.Quantity > 0
}
