package recorder

import (
	"time"

	"StockSentinel/internal/model"
)

// Computation paths stored with each record.
const (
	PathOK       = "ok"
	PathFallback = "fallback"
)

// AnalysisRecord is one computed level set for a symbol.
type AnalysisRecord struct {
	Timestamp    time.Time
	Symbol       string
	Source       string
	CurrentPrice float64
	High         float64
	Low          float64
	Close        float64
	Path         string // "ok" or "fallback"
	Support      []model.Cluster
	Resistance   []model.Cluster
}

// FromAnalysis builds the record for a finished analysis.
func FromAnalysis(a *model.StockAnalysis) *AnalysisRecord {
	path := PathOK
	if a.Fallback {
		path = PathFallback
	}
	ts := a.AnalyzedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return &AnalysisRecord{
		Timestamp:    ts,
		Symbol:       a.Symbol,
		Source:       a.DataSource,
		CurrentPrice: a.Window.CurrentPrice,
		High:         a.Window.High,
		Low:          a.Window.Low,
		Close:        a.Window.Close,
		Path:         path,
		Support:      a.Levels.Support,
		Resistance:   a.Levels.Resistance,
	}
}

// Recorder persists computed levels as an audit trail.
type Recorder interface {
	RecordAnalysis(rec *AnalysisRecord) error
	Close() error
}
