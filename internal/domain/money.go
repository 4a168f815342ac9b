package domain

import "fmt"

// ServiceFeeCents is the flat per-transaction service fee (2000.00).
const ServiceFeeCents int64 = 200000

// FormatMoney renders minor units as a fixed-point string with exactly two
// fraction digits and no thousands separators ("202000.00").
func FormatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// GrossAmount rounds minor units half-up to the integral amount the gateway expects.
func GrossAmount(cents int64) int64 {
	if cents < 0 {
		return -GrossAmount(-cents)
	}
	return (cents + 50) / 100
}

type Pricing struct {
	UnitPriceCents  int64
	SubtotalCents   int64
	ServiceFeeCents int64
	GrandTotalCents int64
}

func NewPricing(unitPriceCents int64, quantity int) Pricing {
	subtotal := unitPriceCents * int64(quantity)
	return Pricing{
		UnitPriceCents:  unitPriceCents,
		SubtotalCents:   subtotal,
		ServiceFeeCents: ServiceFeeCents,
		GrandTotalCents: subtotal + ServiceFeeCents,
	}
}
