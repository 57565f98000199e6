// Package utils provides shared utility functions.
package utils

import "fmt"

// FormatPercent formats a percentage with an explicit sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatAmount formats a CNY amount using 万/亿 units, the convention of
// the domestic quote feed.
func FormatAmount(amount float64) string {
	abs := amount
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e8:
		return fmt.Sprintf("%.2f亿", amount/1e8)
	case abs >= 1e4:
		return fmt.Sprintf("%.2f万", amount/1e4)
	default:
		return fmt.Sprintf("%.2f", amount)
	}
}

// FormatPrice formats a price with two decimals.
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.2f", price)
}
