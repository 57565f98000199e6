package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-06-04 is a Tuesday, 2024-06-08 a Saturday.
func cnTime(t *testing.T, day, hour, min, sec int) time.Time {
	t.Helper()
	return time.Date(2024, 6, day, hour, min, sec, 0, Get(CN).Location)
}

func TestIsOpen_CNSessionBoundsInclusive(t *testing.T) {
	def := Get(CN)

	assert.True(t, def.IsOpen(cnTime(t, 4, 9, 30, 0)), "session start")
	assert.True(t, def.IsOpen(cnTime(t, 4, 11, 30, 0)), "morning session end")
	assert.True(t, def.IsOpen(cnTime(t, 4, 13, 0, 0)), "afternoon session start")
	assert.True(t, def.IsOpen(cnTime(t, 4, 15, 0, 0)), "close")
	assert.True(t, def.IsOpen(cnTime(t, 4, 10, 15, 30)), "mid-morning")

	assert.False(t, def.IsOpen(cnTime(t, 4, 9, 29, 59)), "just before open")
	assert.False(t, def.IsOpen(cnTime(t, 4, 11, 30, 1)), "one second after morning end")
	assert.False(t, def.IsOpen(cnTime(t, 4, 12, 0, 0)), "lunch break")
	assert.False(t, def.IsOpen(cnTime(t, 4, 15, 0, 1)), "one second after close")
	assert.False(t, def.IsOpen(cnTime(t, 4, 15, 1, 0)), "just after close")
	assert.False(t, def.IsOpen(cnTime(t, 4, 23, 0, 0)), "night")
}

func TestIsOpen_SessionEndSecondPrecision(t *testing.T) {
	for _, tc := range []struct {
		code      Code
		hour, min int
	}{
		{CN, 11, 30},
		{CN, 15, 0},
		{HK, 12, 0},
		{HK, 16, 0},
		{US, 16, 0},
	} {
		def := Get(tc.code)
		end := time.Date(2024, 6, 4, tc.hour, tc.min, 0, 0, def.Location)
		assert.Truef(t, def.IsOpen(end), "%s %02d:%02d:00", tc.code, tc.hour, tc.min)
		assert.Falsef(t, def.IsOpen(end.Add(time.Second)), "%s %02d:%02d:01", tc.code, tc.hour, tc.min)
	}
}

func TestIsOpen_WeekendAlwaysClosed(t *testing.T) {
	for _, code := range []Code{CN, HK, US} {
		def := Get(code)
		sat := time.Date(2024, 6, 8, 10, 0, 0, 0, def.Location)
		sun := time.Date(2024, 6, 9, 10, 0, 0, 0, def.Location)
		assert.Falsef(t, def.IsOpen(sat), "%s Saturday", code)
		assert.Falsef(t, def.IsOpen(sun), "%s Sunday", code)
	}
}

func TestIsOpen_HKNoonBoundary(t *testing.T) {
	def := Get(HK)
	assert.True(t, def.IsOpen(time.Date(2024, 6, 4, 12, 0, 0, 0, def.Location)))
	assert.False(t, def.IsOpen(time.Date(2024, 6, 4, 12, 30, 0, 0, def.Location)))
	assert.True(t, def.IsOpen(time.Date(2024, 6, 4, 16, 0, 0, 0, def.Location)))
	assert.False(t, def.IsOpen(time.Date(2024, 6, 4, 16, 1, 0, 0, def.Location)))
}

func TestIsOpen_ConvertsToMarketZone(t *testing.T) {
	us := Get(US)

	// 02:00 Tuesday in Shanghai is 14:00 Monday in New York during DST:
	// a weekday session hour even though it is deep night in Asia.
	shanghai := Get(CN).Location
	at := time.Date(2024, 6, 4, 2, 0, 0, 0, shanghai)
	assert.True(t, us.IsOpen(at))

	// 22:00 Monday in New York is Tuesday in Shanghai; the weekday check
	// must use New York's clock, and the market is closed by then anyway.
	at = time.Date(2024, 6, 4, 10, 0, 0, 0, shanghai)
	assert.False(t, us.IsOpen(at))
}

func TestNextOpen_SkipsWeekend(t *testing.T) {
	def := Get(CN)

	// From Saturday morning the next session starts Monday 09:30.
	from := time.Date(2024, 6, 8, 10, 0, 0, 0, def.Location)
	next := def.NextOpen(from)
	require.False(t, next.IsZero())

	local := next.In(def.Location)
	assert.Equal(t, time.Monday, local.Weekday())
	assert.Equal(t, 9, local.Hour())
	assert.Equal(t, 30, local.Minute())
}

func TestNextOpen_SameDayBeforeOpen(t *testing.T) {
	def := Get(CN)
	from := time.Date(2024, 6, 4, 8, 0, 0, 0, def.Location)
	next := def.NextOpen(from).In(def.Location)
	assert.Equal(t, from.Day(), next.Day())
	assert.Equal(t, 9, next.Hour())
	assert.Equal(t, 30, next.Minute())
}

func TestNextOpen_AfternoonSessionAfterLunch(t *testing.T) {
	def := Get(CN)
	from := time.Date(2024, 6, 4, 12, 15, 0, 0, def.Location)
	next := def.NextOpen(from).In(def.Location)
	assert.Equal(t, from.Day(), next.Day())
	assert.Equal(t, 13, next.Hour())
	assert.Equal(t, 0, next.Minute())
}

func TestValidSymbol(t *testing.T) {
	cases := []struct {
		code  Code
		sym   string
		valid bool
	}{
		{CN, "600519", true},
		{CN, "000001", true},
		{CN, "399006", true},
		{CN, "100000", false},
		{CN, "60051", false},
		{HK, "00700", true},
		{HK, "0700", false},
		{US, "AAPL", true},
		{US, "BRKAB", true},
		{US, "TOOLONG", false},
		{US, "aapl", false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.valid, Get(tc.code).ValidSymbol(tc.sym), "%s/%s", tc.code, tc.sym)
	}
}
