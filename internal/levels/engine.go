// Package levels derives support and resistance zones from a price window.
//
// Candidates come from four families (pivot, Fibonacci, moving average,
// psychological), each with a fixed weight. They are merged greedily into
// clusters within a relative tolerance of the current price and the three
// strongest clusters per side are reported nearest-first. The computation is
// pure: every call works only on its own inputs.
package levels

import (
	"errors"
	"fmt"
	"math"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/model"
)

// DefaultThresholdPercent is the cluster tolerance as a percentage of the current price.
const DefaultThresholdPercent = 1.0

// ErrInvalidWindow is wrapped by every input validation failure.
var ErrInvalidWindow = errors.New("invalid price window")

// Path reports which branch produced a Result.
type Path string

const (
	PathOK       Path = "ok"
	PathFallback Path = "fallback"
)

// Result is a LevelSet together with the branch that produced it. Err is set
// only on the fallback path and is informational.
type Result struct {
	Levels model.LevelSet
	Path   Path
	Err    error
}

// Fallback reports whether the basic fixed-percentage set was returned.
func (r Result) Fallback() bool { return r.Path == PathFallback }

type options struct {
	thresholdPercent float64
	ma               MAStrategy
}

// Option tunes a computation.
type Option func(*options)

// WithThresholdPercent sets the cluster tolerance, in percent of the current price.
func WithThresholdPercent(p float64) Option {
	return func(o *options) { o.thresholdPercent = p }
}

// WithMAStrategy overrides how moving-average anchors are derived.
func WithMAStrategy(s MAStrategy) Option {
	return func(o *options) {
		if s != nil {
			o.ma = s
		}
	}
}

// WithHistoricalCloses derives moving-average anchors from a chronological
// close series instead of fixed offsets of the last close.
func WithHistoricalCloses(closes []float64) Option {
	return func(o *options) {
		if len(closes) > 0 {
			o.ma = HistoricalMA{Closes: closes}
		}
	}
}

// Compute returns support and resistance zones for the given window. It never
// fails: invalid input yields the basic fallback set.
func Compute(high, low, close, currentPrice float64, opts ...Option) model.LevelSet {
	return Analyze(model.PriceWindow{High: high, Low: low, Close: close, CurrentPrice: currentPrice}, opts...).Levels
}

// Analyze is Compute with visibility into which path fired.
func Analyze(w model.PriceWindow, opts ...Option) (res Result) {
	o := options{thresholdPercent: DefaultThresholdPercent, ma: SyntheticMA{}}
	for _, opt := range opts {
		opt(&o)
	}

	defer func() {
		if r := recover(); r != nil {
			res = fallbackResult(w.CurrentPrice, fmt.Errorf("level computation panicked: %v", r))
		}
	}()

	if err := Validate(w, o.thresholdPercent); err != nil {
		return fallbackResult(w.CurrentPrice, err)
	}

	candidates := GenerateCandidates(w, o.ma)
	return Result{
		Levels: ClusterCandidates(candidates, w.CurrentPrice, o.thresholdPercent),
		Path:   PathOK,
	}
}

// Validate checks the sanity preconditions of a computation.
func Validate(w model.PriceWindow, thresholdPercent float64) error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"high", w.High},
		{"low", w.Low},
		{"close", w.Close},
		{"current price", w.CurrentPrice},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidWindow, f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidWindow, f.name)
		}
	}
	if w.CurrentPrice == 0 {
		return fmt.Errorf("%w: current price must be positive", ErrInvalidWindow)
	}
	if w.High < w.Low {
		return fmt.Errorf("%w: high %.4f below low %.4f", ErrInvalidWindow, w.High, w.Low)
	}
	if math.IsNaN(thresholdPercent) || math.IsInf(thresholdPercent, 0) || thresholdPercent < 0 {
		return fmt.Errorf("%w: threshold percent %v", ErrInvalidWindow, thresholdPercent)
	}
	return nil
}

// Basic fallback multipliers and strengths, nearest first.
var (
	basicSupport    = []float64{0.98, 0.96, 0.94}
	basicResistance = []float64{1.02, 1.04, 1.06}
	basicStrength   = []float64{2, 1, 1}
)

// BasicLevels is the fixed-percentage set returned when computation is not possible.
func BasicLevels(currentPrice float64) model.LevelSet {
	ls := model.LevelSet{
		Support:    make([]model.Cluster, len(basicSupport)),
		Resistance: make([]model.Cluster, len(basicResistance)),
	}
	for i, m := range basicSupport {
		ls.Support[i] = model.Cluster{Price: calculator.Round2(currentPrice * m), Strength: basicStrength[i], Sources: []string{"basic"}}
	}
	for i, m := range basicResistance {
		ls.Resistance[i] = model.Cluster{Price: calculator.Round2(currentPrice * m), Strength: basicStrength[i], Sources: []string{"basic"}}
	}
	return ls
}

func fallbackResult(currentPrice float64, err error) Result {
	return Result{Levels: BasicLevels(currentPrice), Path: PathFallback, Err: err}
}
