// Package money formats decimal amounts for display.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Format renders d as dollars with two decimals and thousands separators,
// e.g. "$1,234.50" or "-$12.00".
func Format(d decimal.Decimal) string {
	rounded := d.Round(2)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}

	abs := rounded.Abs()
	whole := printer.Sprintf("%d", abs.IntPart())
	fixed := abs.StringFixed(2)
	cents := fixed[len(fixed)-3:]

	return sign + "$" + whole + cents
}

// Sum adds up amounts, returning zero for an empty slice.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
