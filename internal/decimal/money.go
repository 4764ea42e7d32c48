package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// VATIncludedDivisor turns a 21% VAT-inclusive amount into its net amount
var VATIncludedDivisor = decimal.RequireFromString("1.21")

// Div divides a by b, rounds to 2 places
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return Zero
	}
	return a.Div(b).Round(2)
}

// SplitVATIncluded splits a 21% VAT-inclusive total into its VAT portion
// and net amount: vat = total - round(total/1.21, 2), net = total - vat.
func SplitVATIncluded(total decimal.Decimal) (vat, net decimal.Decimal) {
	vat = total.Sub(Div(total, VATIncludedDivisor))
	net = total.Sub(vat)
	return vat, net
}

// Wire formats an amount with two decimals, as the service expects
func Wire(d decimal.Decimal) string {
	return d.StringFixed(2)
}
