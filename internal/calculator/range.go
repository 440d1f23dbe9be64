package calculator

import (
	"errors"
	"math"
)

// CalculateRecentRange scans the last `sessions` samples of highs and lows and
// returns the extreme high and low.
func CalculateRecentRange(highs, lows []float64, sessions int) (high, low float64, err error) {
	if len(highs) == 0 || len(lows) == 0 {
		return 0, 0, errors.New("no highs or lows provided")
	}
	if sessions <= 0 {
		return 0, 0, errors.New("sessions must be positive")
	}
	high = math.Inf(-1)
	for _, h := range tail(highs, sessions) {
		if h > high {
			high = h
		}
	}
	low = math.Inf(1)
	for _, l := range tail(lows, sessions) {
		if l < low {
			low = l
		}
	}
	return high, low, nil
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
