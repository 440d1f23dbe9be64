package calculator

import (
	"errors"

	"github.com/markcheno/go-talib"
)

// Moving-average periods used for level anchors.
const (
	PeriodMA20  = 20
	PeriodMA50  = 50
	PeriodMA200 = 200
)

// Fixed offsets used when no close history is available.
const (
	syntheticMA20  = 0.99
	syntheticMA50  = 0.98
	syntheticMA200 = 0.96
)

// MovingAverageLevels holds the three moving-average anchors.
type MovingAverageLevels struct {
	MA20  float64
	MA50  float64
	MA200 float64
}

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sma := talib.Sma(prices, period)
	return sma[len(sma)-1], nil
}

// SyntheticMovingAverages approximates MA20/50/200 as fixed offsets of the last close.
func SyntheticMovingAverages(close float64) MovingAverageLevels {
	return MovingAverageLevels{
		MA20:  Round2(close * syntheticMA20),
		MA50:  Round2(close * syntheticMA50),
		MA200: Round2(close * syntheticMA200),
	}
}

// HistoricalMovingAverages computes true SMAs over the trailing closes. Any
// period the series is too short for keeps its synthetic value.
func HistoricalMovingAverages(closes []float64, close float64) MovingAverageLevels {
	levels := SyntheticMovingAverages(close)
	if ma, err := CalculateSMA(closes, PeriodMA20); err == nil {
		levels.MA20 = Round2(ma)
	}
	if ma, err := CalculateSMA(closes, PeriodMA50); err == nil {
		levels.MA50 = Round2(ma)
	}
	if ma, err := CalculateSMA(closes, PeriodMA200); err == nil {
		levels.MA200 = Round2(ma)
	}
	return levels
}
