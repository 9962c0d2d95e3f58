// Package pricing derives sale prices from base (cost) prices.
//
// The markup is fixed at 35% and the result is rounded to one decimal place
// with round-half-away-from-zero, computed in decimal arithmetic so that
// values such as 3 * 1.35 = 4.05 round to 4.1 regardless of float
// representation.
package pricing

import "github.com/shopspring/decimal"

var markup = decimal.RequireFromString("1.35")

const places = 1

// Compute returns basePrice * 1.35 rounded to tenths, half away from zero.
func Compute(basePrice float64) float64 {
	return decimal.NewFromFloat(basePrice).Mul(markup).Round(places).InexactFloat64()
}

// SalePrice is Compute lifted over an optional base price: nil in, nil out.
func SalePrice(basePrice *float64) *float64 {
	if basePrice == nil {
		return nil
	}
	v := Compute(*basePrice)
	return &v
}

// LineTotal multiplies a unit price by a quantity without float drift.
func LineTotal(unitPrice float64, qty int) float64 {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(qty))).InexactFloat64()
}

// Sum adds amounts without float drift.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.InexactFloat64()
}
