// Package market provides market definitions, trading-session calendars and
// normalized quote models.
package market

import (
	"regexp"
	"time"
)

// Code identifies a supported market.
type Code string

const (
	CN Code = "CN" // China A-shares
	HK Code = "HK" // Hong Kong
	US Code = "US" // United States
)

// Session is a contiguous trading window in local wall-clock time,
// inclusive on both ends.
type Session struct {
	Start ClockTime
	End   ClockTime
}

// ClockTime is a wall-clock time of day, independent of date and zone.
type ClockTime struct {
	Hour   int
	Minute int
}

// Minutes returns the time of day as minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Definition describes a market: its timezone, trading sessions and the
// shape of valid domestic symbols. Definitions are created once at process
// start and never mutated, so all methods are safe for concurrent use.
type Definition struct {
	Code          Code
	Name          string
	Location      *time.Location
	Sessions      []Session
	SymbolPattern *regexp.Regexp
}

// ValidSymbol reports whether sym matches the market's symbol format.
func (d *Definition) ValidSymbol(sym string) bool {
	return d.SymbolPattern.MatchString(sym)
}

func mustLoadLocation(name string, fallback *time.Location) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return loc
}

var (
	// Markets holds the predefined market definitions keyed by code.
	Markets map[Code]*Definition

	cnMarket = &Definition{
		Code:     CN,
		Name:     "China A-shares",
		Location: mustLoadLocation("Asia/Shanghai", time.FixedZone("CST", 8*3600)),
		Sessions: []Session{
			{Start: ClockTime{9, 30}, End: ClockTime{11, 30}},
			{Start: ClockTime{13, 0}, End: ClockTime{15, 0}},
		},
		SymbolPattern: regexp.MustCompile(`^[036]\d{5}$`),
	}
	hkMarket = &Definition{
		Code:     HK,
		Name:     "Hong Kong",
		Location: mustLoadLocation("Asia/Hong_Kong", time.FixedZone("HKT", 8*3600)),
		Sessions: []Session{
			{Start: ClockTime{9, 30}, End: ClockTime{12, 0}},
			{Start: ClockTime{13, 0}, End: ClockTime{16, 0}},
		},
		SymbolPattern: regexp.MustCompile(`^\d{5}$`),
	}
	usMarket = &Definition{
		Code:     US,
		Name:     "United States",
		Location: mustLoadLocation("America/New_York", time.FixedZone("EST", -5*3600)),
		Sessions: []Session{
			{Start: ClockTime{9, 30}, End: ClockTime{16, 0}},
		},
		SymbolPattern: regexp.MustCompile(`^[A-Z]{1,5}$`),
	}
)

func init() {
	Markets = map[Code]*Definition{
		CN: cnMarket,
		HK: hkMarket,
		US: usMarket,
	}
}

// Get returns the definition for the given market code, or nil if the code
// is not one of the predefined markets.
func Get(code Code) *Definition {
	return Markets[code]
}

// ParseCode converts a raw string to a market Code, defaulting to CN for
// unrecognized values. Mirrors the tolerant handling of stored rows whose
// market column predates the HK/US markets.
func ParseCode(s string) Code {
	switch Code(s) {
	case CN, HK, US:
		return Code(s)
	default:
		return CN
	}
}
