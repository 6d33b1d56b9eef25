package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount for display, e.g. "$1,234.50".
// Negative amounts are rendered as "-$5.00".
func FormatCurrency(amount decimal.Decimal, symbol string, places int32) string {
	if places < 0 {
		places = 0
	}
	rounded := amount.Round(places)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	fixed := rounded.StringFixed(places)
	intPart, fracPart, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(symbol)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
