package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.01},
		{1.004, 1.0},
		{-1.005, -1.01},
		{105.28, 105.28},
		{2.675, 2.68},
		{100, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
	assert.True(t, math.IsNaN(Round2(math.NaN())))
	assert.True(t, math.IsInf(Round2(math.Inf(1)), 1))
}

func TestRoundWhole_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 124.0, RoundWhole(123.5))
	assert.Equal(t, 123.0, RoundWhole(123.4))
	assert.Equal(t, -124.0, RoundWhole(-123.5))
}

func TestCalculatePivotPoints_ClassicIdentities(t *testing.T) {
	p := CalculatePivotPoints(110, 90, 100)
	assert.Equal(t, 100.0, p.Pivot)
	assert.Equal(t, 110.0, p.R1)
	assert.Equal(t, 90.0, p.S1)
	assert.Equal(t, 120.0, p.R2)
	assert.Equal(t, 80.0, p.S2)
	assert.Equal(t, 130.0, p.R3)
	assert.Equal(t, 70.0, p.S3)
	assert.Equal(t, []float64{110, 120, 130}, p.Resistance())
	assert.Equal(t, []float64{90, 80, 70}, p.Support())
}

func TestCalculatePivotPoints_Rounded(t *testing.T) {
	p := CalculatePivotPoints(10, 9, 9.5)
	assert.Equal(t, 9.5, p.Pivot)
	p = CalculatePivotPoints(10.01, 9.02, 9.73)
	// pivot = 28.76/3 = 9.58666...
	assert.Equal(t, 9.59, p.Pivot)
}

func TestCalculateFibonacciLevels(t *testing.T) {
	f := CalculateFibonacciLevels(110, 90)
	assert.Equal(t, 105.28, f.L236)
	assert.Equal(t, 102.36, f.L382)
	assert.Equal(t, 100.0, f.L500)
	assert.Equal(t, 97.64, f.L618)
	assert.Equal(t, 94.28, f.L786)
}

func TestCalculateFibonacciLevels_FlatRange(t *testing.T) {
	f := CalculateFibonacciLevels(50, 50)
	for _, v := range []float64{f.L236, f.L382, f.L500, f.L618, f.L786} {
		assert.Equal(t, 50.0, v)
	}
}

func TestCalculatePsychologicalLevels(t *testing.T) {
	p := CalculatePsychologicalLevels(123.4)
	assert.Equal(t, 123.0, p.Base)
	assert.Equal(t, 123.5, p.HalfAbove)
	assert.Equal(t, 124.0, p.WholeAbove)
	assert.Equal(t, 122.0, p.WholeBelow)
	assert.Equal(t, 122.5, p.HalfBelow)
}

func TestCalculateSMA(t *testing.T) {
	_, err := CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1, 2}, 3)
	assert.Error(t, err)

	ma, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, ma, 1e-9)
}

func TestSyntheticMovingAverages(t *testing.T) {
	ma := SyntheticMovingAverages(100)
	assert.Equal(t, 99.0, ma.MA20)
	assert.Equal(t, 98.0, ma.MA50)
	assert.Equal(t, 96.0, ma.MA200)
}

func TestHistoricalMovingAverages(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	ma := HistoricalMovingAverages(closes, 60)
	// last 20 closes are 41..60, last 50 are 11..60
	assert.Equal(t, 50.5, ma.MA20)
	assert.Equal(t, 35.5, ma.MA50)
	// 200 periods unavailable: synthetic 60*0.96
	assert.Equal(t, 57.6, ma.MA200)
}

func TestHistoricalMovingAverages_NoHistoryMatchesSynthetic(t *testing.T) {
	assert.Equal(t, SyntheticMovingAverages(42.42), HistoricalMovingAverages(nil, 42.42))
}

func TestCalculateRecentRange(t *testing.T) {
	highs := []float64{200, 10, 12, 11}
	lows := []float64{1, 8, 9, 7}

	h, l, err := CalculateRecentRange(highs, lows, 3)
	require.NoError(t, err)
	assert.Equal(t, 12.0, h)
	assert.Equal(t, 7.0, l)

	h, l, err = CalculateRecentRange(highs, lows, 20)
	require.NoError(t, err)
	assert.Equal(t, 200.0, h)
	assert.Equal(t, 1.0, l)

	_, _, err = CalculateRecentRange(nil, lows, 20)
	assert.Error(t, err)
	_, _, err = CalculateRecentRange(highs, lows, 0)
	assert.Error(t, err)
}
