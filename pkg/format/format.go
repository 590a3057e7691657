// Package format holds the number and column formatting rules shared by
// every reporter.
package format

import (
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
)

// Negligible is the magnitude below which a value renders as a dash.
const Negligible = 0.001

// SpreadsheetNumberFormat is the negative-paren rule expressed as a
// spreadsheet custom number format.
const SpreadsheetNumberFormat = `0.00_);(0.00);"- "`

var negligible = decimal.NewFromFloat(Negligible)

// IsNegligible reports whether v renders as a dash.
func IsNegligible(v decimal.Decimal) bool {
	return v.Abs().LessThan(negligible)
}

// NegParen formats v with two decimals in accounting convention: negatives
// in parentheses, positives padded with a space either side so the digits
// line up with parenthesised values, negligible values as a dash. The result
// is right-justified to width; a width of 0 disables padding.
func NegParen(v decimal.Decimal, width int) string {
	var s string
	switch {
	case IsNegligible(v):
		s = "- "
	case v.IsNegative():
		s = "(" + v.Abs().StringFixed(2) + ")"
	default:
		s = " " + v.StringFixed(2) + " "
	}
	return PadLeft(s, width)
}

// PadLeft right-justifies s in a field of width display cells.
func PadLeft(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.FillLeft(s, width)
}

// PadRight left-justifies s in a field of width display cells.
func PadRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.FillRight(s, width)
}

// Truncate cuts s to at most width display cells. Never fails on overflow.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// Center truncates s to width and pads it evenly on both sides.
func Center(s string, width int) string {
	s = Truncate(s, width)
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return runewidth.FillRight(runewidth.FillLeft(s, runewidth.StringWidth(s)+left), width)
}
