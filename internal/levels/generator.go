package levels

import (
	"fmt"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// Candidate weights per source, in emission order.
var (
	pivotWeights = []float64{5, 4, 3}

	fibWeights = []struct {
		Label  string
		Weight float64
		Level  func(calculator.FibonacciLevels) float64
	}{
		{"fib_618", 4, func(f calculator.FibonacciLevels) float64 { return f.L618 }},
		{"fib_500", 3, func(f calculator.FibonacciLevels) float64 { return f.L500 }},
		{"fib_382", 3, func(f calculator.FibonacciLevels) float64 { return f.L382 }},
		{"fib_786", 2, func(f calculator.FibonacciLevels) float64 { return f.L786 }},
		{"fib_236", 2, func(f calculator.FibonacciLevels) float64 { return f.L236 }},
	}

	maWeights = []struct {
		Label  string
		Weight float64
		Level  func(calculator.MovingAverageLevels) float64
	}{
		{"MA20", 3, func(m calculator.MovingAverageLevels) float64 { return m.MA20 }},
		{"MA50", 2, func(m calculator.MovingAverageLevels) float64 { return m.MA50 }},
		{"MA200", 4, func(m calculator.MovingAverageLevels) float64 { return m.MA200 }},
	}

	psychWeights = []struct {
		Label  string
		Weight float64
		Level  func(calculator.PsychologicalLevels) float64
	}{
		{"psych_00", 3, func(p calculator.PsychologicalLevels) float64 { return p.Base }},
		{"psych_50", 2, func(p calculator.PsychologicalLevels) float64 { return p.HalfAbove }},
		{"psych_00_above", 1, func(p calculator.PsychologicalLevels) float64 { return p.WholeAbove }},
		{"psych_00_below", 1, func(p calculator.PsychologicalLevels) float64 { return p.WholeBelow }},
		{"psych_50_below", 1, func(p calculator.PsychologicalLevels) float64 { return p.HalfBelow }},
	}
)

// MAStrategy selects how moving-average anchors are derived.
type MAStrategy interface {
	MovingAverages(close float64) calculator.MovingAverageLevels
}

// SyntheticMA derives anchors as fixed offsets of the last close.
type SyntheticMA struct{}

func (SyntheticMA) MovingAverages(close float64) calculator.MovingAverageLevels {
	return calculator.SyntheticMovingAverages(close)
}

// HistoricalMA derives anchors from a chronological close series.
type HistoricalMA struct {
	Closes []float64
}

func (h HistoricalMA) MovingAverages(close float64) calculator.MovingAverageLevels {
	return calculator.HistoricalMovingAverages(h.Closes, close)
}

// GenerateCandidates builds the ordered candidate list:
// pivot, Fibonacci, moving-average, then psychological levels.
func GenerateCandidates(w model.PriceWindow, ma MAStrategy) []model.Candidate {
	if ma == nil {
		ma = SyntheticMA{}
	}
	out := make([]model.Candidate, 0, 19)
	out = append(out, pivotCandidates(w)...)
	out = append(out, fibonacciCandidates(w)...)
	out = append(out, movingAverageCandidates(w, ma)...)
	out = append(out, psychologicalCandidates(w)...)
	return out
}

func pivotCandidates(w model.PriceWindow) []model.Candidate {
	p := calculator.CalculatePivotPoints(w.High, w.Low, w.Close)
	out := make([]model.Candidate, 0, 6)
	for i, price := range p.Support() {
		out = append(out, model.Candidate{Label: fmt.Sprintf("pivot_s%d", i+1), Price: price, Weight: pivotWeights[i]})
	}
	for i, price := range p.Resistance() {
		out = append(out, model.Candidate{Label: fmt.Sprintf("pivot_r%d", i+1), Price: price, Weight: pivotWeights[i]})
	}
	return out
}

func fibonacciCandidates(w model.PriceWindow) []model.Candidate {
	f := calculator.CalculateFibonacciLevels(w.High, w.Low)
	out := make([]model.Candidate, 0, len(fibWeights))
	for _, fw := range fibWeights {
		out = append(out, model.Candidate{Label: fw.Label, Price: fw.Level(f), Weight: fw.Weight})
	}
	return out
}

func movingAverageCandidates(w model.PriceWindow, ma MAStrategy) []model.Candidate {
	m := ma.MovingAverages(w.Close)
	out := make([]model.Candidate, 0, len(maWeights))
	for _, mw := range maWeights {
		price := mw.Level(m)
		if price == 0 {
			continue
		}
		out = append(out, model.Candidate{Label: mw.Label, Price: price, Weight: mw.Weight})
	}
	return out
}

func psychologicalCandidates(w model.PriceWindow) []model.Candidate {
	p := calculator.CalculatePsychologicalLevels(w.CurrentPrice)
	out := make([]model.Candidate, 0, len(psychWeights))
	for _, pw := range psychWeights {
		out = append(out, model.Candidate{Label: pw.Label, Price: pw.Level(p), Weight: pw.Weight})
	}
	return out
}
