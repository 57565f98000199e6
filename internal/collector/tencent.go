package collector

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"panwatch/internal/config"
	"panwatch/internal/errors"
	"panwatch/internal/logging"
	"panwatch/internal/market"
)

// cnIndex describes one predefined domestic index on the feed.
type cnIndex struct {
	symbol string
	prefix string
}

// Predefined domestic indices: SSE Composite, SZSE Component, ChiNext.
var cnIndices = []cnIndex{
	{symbol: "000001", prefix: "sh"},
	{symbol: "399001", prefix: "sz"},
	{symbol: "399006", prefix: "sz"},
}

// The feed packs at least 36 tilde-separated fields per instrument; the
// turnover composite sits in field 35.
const minQuoteFields = 36

// TencentCollector fetches quotes for one market from the Tencent quote
// feed (GBK-encoded, one instrument per semicolon-separated line).
type TencentCollector struct {
	def     *market.Definition
	client  *resty.Client
	baseURL string
	logger  zerolog.Logger
}

// NewTencentCollector creates a collector for the given market.
func NewTencentCollector(def *market.Definition, cfg config.CollectorConfig, logger zerolog.Logger) *TencentCollector {
	client := resty.New()
	client.SetTimeout(cfg.Timeout())

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://qt.gtimg.cn/q="
	}

	return &TencentCollector{
		def:     def,
		client:  client,
		baseURL: baseURL,
		logger:  logging.WithMarket(logger, string(def.Code)),
	}
}

// Market returns the market this collector serves.
func (t *TencentCollector) Market() market.Code {
	return t.def.Code
}

// TranslateSymbol converts a domestic symbol to the feed's format:
// sh600519 / sz000001 / hk00700 / usAAPL.
func TranslateSymbol(sym string, code market.Code) string {
	switch code {
	case market.HK:
		return "hk" + sym
	case market.US:
		return "us" + sym
	}
	// A-shares: 6xxxxx and 000xxx trade on Shanghai, the rest on Shenzhen.
	if strings.HasPrefix(sym, "6") || strings.HasPrefix(sym, "000") {
		return "sh" + sym
	}
	return "sz" + sym
}

// FetchQuotes issues one batched request for all symbols. On transport
// failure it logs and returns an empty slice.
func (t *TencentCollector) FetchQuotes(ctx context.Context, symbols []string) []market.Quote {
	if len(symbols) == 0 {
		return nil
	}

	translated := make([]string, 0, len(symbols))
	for _, s := range symbols {
		translated = append(translated, TranslateSymbol(s, t.def.Code))
	}

	start := time.Now()
	records, err := t.fetchRaw(ctx, translated)
	if err != nil {
		cerr := errors.NewCollectorError(string(t.def.Code), err)
		t.logger.Error().Err(cerr).Int("symbols", len(symbols)).Msg("Quote fetch failed")
		return nil
	}

	quotes := make([]market.Quote, 0, len(records))
	now := time.Now()
	for _, r := range records {
		quotes = append(quotes, market.Quote{
			Symbol:       r.symbol,
			Name:         r.name,
			Market:       t.def.Code,
			CurrentPrice: r.currentPrice,
			ChangePct:    r.changePct,
			ChangeAmount: r.changeAmount,
			Volume:       r.volume,
			Turnover:     r.turnover,
			Open:         r.open,
			High:         r.high,
			Low:          r.low,
			PrevClose:    r.prevClose,
			Timestamp:    now,
		})
	}

	logging.LogCollection(t.logger, string(t.def.Code), len(symbols), len(quotes), time.Since(start))
	return quotes
}

// FetchIndices returns the predefined domestic indices. Non-domestic
// markets have no index feed here and return an empty slice.
func (t *TencentCollector) FetchIndices(ctx context.Context) []market.IndexQuote {
	if t.def.Code != market.CN {
		return nil
	}

	translated := make([]string, 0, len(cnIndices))
	for _, idx := range cnIndices {
		translated = append(translated, idx.prefix+idx.symbol)
	}

	records, err := t.fetchRaw(ctx, translated)
	if err != nil {
		cerr := errors.NewCollectorError(string(t.def.Code), err)
		t.logger.Error().Err(cerr).Msg("Index fetch failed")
		return nil
	}

	indices := make([]market.IndexQuote, 0, len(records))
	now := time.Now()
	for _, r := range records {
		indices = append(indices, market.IndexQuote{
			Symbol:       r.symbol,
			Name:         r.name,
			Market:       market.CN,
			CurrentPrice: r.currentPrice,
			ChangePct:    r.changePct,
			ChangeAmount: r.changeAmount,
			Volume:       r.volume,
			Turnover:     r.turnover,
			Timestamp:    now,
		})
	}
	return indices
}

// rawQuote is one parsed feed line before normalization into market types.
type rawQuote struct {
	symbol       string
	name         string
	currentPrice float64
	prevClose    float64
	open         float64
	volume       float64
	changeAmount float64
	changePct    float64
	high         float64
	low          float64
	turnover     float64
}

// fetchRaw performs the batched GET, decodes GBK and parses every line.
// Lines that fail to parse or carry no price are silently skipped.
func (t *TencentCollector) fetchRaw(ctx context.Context, feedSymbols []string) ([]rawQuote, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		Get(t.baseURL + strings.Join(feedSymbols, ","))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, errors.Wrapf(errors.ErrDataNotFound, "feed returned status %d", resp.StatusCode())
	}

	decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), resp.Body())
	if err != nil {
		// Keep whatever decoded; the feed occasionally embeds stray bytes.
		decoded = resp.Body()
	}

	var records []rawQuote
	for _, line := range strings.Split(strings.TrimSpace(string(decoded)), ";") {
		if r, ok := parseQuoteLine(line); ok && r.currentPrice > 0 {
			records = append(records, r)
		}
	}
	return records, nil
}

// parseQuoteLine parses one `v_sh600519="..."` feed line. It reports ok
// false for empty lines, no-data lines and structurally short lines.
func parseQuoteLine(line string) (rawQuote, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.Contains(line, `=""`) {
		return rawQuote{}, false
	}

	_, value, found := strings.Cut(line, `="`)
	if !found {
		return rawQuote{}, false
	}
	value = strings.TrimRight(value, `";`)

	parts := strings.Split(value, "~")
	if len(parts) < minQuoteFields {
		return rawQuote{}, false
	}

	// Turnover rides in a price/vol/turnover composite; a malformed
	// composite defaults to 0 without dropping the record.
	turnover := 0.0
	if sub := strings.Split(parts[35], "/"); len(sub) >= 3 {
		if v, err := strconv.ParseFloat(sub[2], 64); err == nil {
			turnover = v
		}
	}

	// Raw identifiers may carry an exchange suffix (AAPL.OQ); strip it.
	// Identifiers starting with the separator are index ids (.IXIC, .DJI)
	// and stay verbatim.
	symbol := parts[2]
	if strings.Contains(symbol, ".") && !strings.HasPrefix(symbol, ".") {
		symbol = symbol[:strings.Index(symbol, ".")]
	}

	return rawQuote{
		symbol:       symbol,
		name:         parts[1],
		currentPrice: parseFloatField(parts[3]),
		prevClose:    parseFloatField(parts[4]),
		open:         parseFloatField(parts[5]),
		volume:       parseFloatField(parts[6]),
		changeAmount: parseFloatField(parts[31]),
		changePct:    parseFloatField(parts[32]),
		high:         parseFloatField(parts[33]),
		low:          parseFloatField(parts[34]),
		turnover:     turnover,
	}, true
}

// parseFloatField converts a feed field to float64, defaulting to 0 for
// empty or malformed values so downstream arithmetic stays total.
func parseFloatField(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
