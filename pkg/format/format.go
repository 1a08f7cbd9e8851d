package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// BRL formats an amount as Brazilian reais, e.g. "R$ 1.234,50".
// Negative amounts are prefixed with a minus sign.
func BRL(amount decimal.Decimal) string {
	v := amount.Round(2).InexactFloat64()
	if v < 0 {
		return brPrinter.Sprintf("-R$ %.2f", -v)
	}
	return brPrinter.Sprintf("R$ %.2f", v)
}

// Percent formats part/whole as a percentage with one decimal, "0,0%" when
// whole is zero.
func Percent(part, whole decimal.Decimal) string {
	if whole.IsZero() {
		return brPrinter.Sprintf("%.1f%%", 0.0)
	}
	return brPrinter.Sprintf("%.1f%%", part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64())
}
