// Package pricing derives checkout totals from line items. Nothing here is
// stored: callers recompute on every cart or coupon change.
package pricing

import (
	"github.com/shopspring/decimal"
)

// MinorUnits is the number of decimal places the currency settles in.
const MinorUnits = 2

// Line is the pricing view of a cart line.
type Line interface {
	LinePrice() decimal.Decimal
	LineQuantity() int
}

type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

// Round rounds half-up to the currency's minor unit. Amounts here are never
// negative, so decimal's half-away-from-zero is half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnits)
}

// Subtotal is Σ unitPrice×quantity, rounded once at the end.
func Subtotal[L Line](lines []L) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LinePrice().Mul(decimal.NewFromInt(int64(l.LineQuantity()))))
	}
	return Round(sum)
}

// ComputeTotals applies discount to the subtotal of lines. finalAmount is
// clamped at zero and a negative discount counts as none.
func ComputeTotals[L Line](lines []L, discount decimal.Decimal) Totals {
	subtotal := Subtotal(lines)

	discount = Round(discount)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		FinalAmount:    subtotal.Sub(discount),
	}
}

// MinorUnitAmount converts an amount to an integer count of minor units
// (centavos), the form payment processors expect.
func MinorUnitAmount(d decimal.Decimal) int64 {
	return Round(d).Shift(MinorUnits).IntPart()
}

// FromMinorUnits is the inverse of MinorUnitAmount.
func FromMinorUnits(n int64) decimal.Decimal {
	return decimal.New(n, -MinorUnits)
}
