package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func roundTo(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return decimal.NewFromFloat(x).Round(int32(places)).InexactFloat64()
}

func percentOf(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return round2(part.Div(total).Mul(decimal.NewFromInt(100)))
}
