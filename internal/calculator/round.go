package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds v to two decimal places, half away from zero. The rounding is
// done on the decimal representation so values such as 1.005 round up.
// Non-finite values are returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// RoundWhole rounds v to the nearest integer, half away from zero.
func RoundWhole(v float64) float64 {
	return math.Round(v)
}
