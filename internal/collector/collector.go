package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockSentinel/internal/calculator"
	"StockSentinel/internal/levels"
	"StockSentinel/internal/logger"
	"StockSentinel/internal/metrics"
	"StockSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Charts  map[string]*model.Chart
	Results []model.SearchResult
	Err     error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchChart(_ context.Context, symbol string) (*model.Chart, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	chart, ok := m.Charts[symbol]
	if !ok {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrSymbolNotFound)
	}
	return chart, nil
}

func (m *MockFetcher) Search(_ context.Context, _ string, limit int) ([]model.SearchResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Results) > limit {
		return m.Results[:limit], nil
	}
	return m.Results, nil
}

// MockChart builds a chart of `count` daily bars drifting around price.
func MockChart(symbol string, price float64, count int) *model.Chart {
	chart := &model.Chart{
		Meta: model.ChartMeta{
			Symbol:        symbol,
			LongName:      symbol + " Inc.",
			Exchange:      "NMS",
			Currency:      "USD",
			Price:         price,
			PreviousClose: price * 0.99,
			Volume:        1000000,
		},
		FetchedAt: time.Now(),
	}
	for i := 0; i < count; i++ {
		p := price * (1 + float64(i-count/2)*0.001)
		bar := model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
		chart.Bars = append(chart.Bars, bar)
		chart.Highs = append(chart.Highs, bar.High)
		chart.Lows = append(chart.Lows, bar.Low)
		chart.Closes = append(chart.Closes, bar.Close)
	}
	return chart
}

// Collector turns a symbol into a StockAnalysis: fetch, window, levels.
type Collector struct {
	Fetcher          Fetcher
	WindowSessions   int
	ThresholdPercent float64
	HistoricalMA     bool
	log              *logger.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, windowSessions int, thresholdPercent float64, historicalMA bool, log *logger.Logger) *Collector {
	return &Collector{
		Fetcher:          fetcher,
		WindowSessions:   windowSessions,
		ThresholdPercent: thresholdPercent,
		HistoricalMA:     historicalMA,
		log:              log.Component("collector"),
	}
}

// Analyze fetches market data for symbol and computes its support/resistance levels.
func (c *Collector) Analyze(ctx context.Context, symbol string) (*model.StockAnalysis, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	chart, err := c.Fetcher.FetchChart(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}
	if chart.Meta.Price <= 0 {
		return nil, fmt.Errorf("%s has no current price: %w", symbol, ErrSymbolNotFound)
	}

	window := BuildWindow(chart, c.WindowSessions)

	opts := []levels.Option{levels.WithThresholdPercent(c.ThresholdPercent)}
	if c.HistoricalMA {
		opts = append(opts, levels.WithHistoricalCloses(chart.Closes))
	}
	res := levels.Analyze(window, opts...)
	metrics.Analyses.WithLabelValues(string(res.Path)).Inc()
	if res.Fallback() {
		c.log.Warnw("level computation fell back to basic levels", "symbol", symbol, "error", res.Err)
	}

	meta := chart.Meta
	a := &model.StockAnalysis{
		Symbol:        symbol,
		CompanyName:   meta.LongName,
		Exchange:      meta.Exchange,
		Currency:      meta.Currency,
		CurrentPrice:  meta.Price,
		PreviousClose: meta.PreviousClose,
		Change:        meta.Price - meta.PreviousClose,
		Volume:        meta.Volume,
		MarketCap:     meta.MarketCap,
		DayHigh:       meta.DayHigh,
		DayLow:        meta.DayLow,
		Window:        window,
		Levels:        res.Levels,
		Fallback:      res.Fallback(),
		DataSource:    c.Fetcher.Name(),
		AnalyzedAt:    time.Now(),
	}
	if a.CompanyName == "" {
		a.CompanyName = symbol
	}
	if a.Currency == "" {
		a.Currency = "USD"
	}
	if meta.PreviousClose != 0 {
		a.ChangePct = a.Change / meta.PreviousClose * 100
	}
	return a, nil
}

// BuildWindow derives the analysis window from a chart: the extreme high and
// low over the last `sessions` samples and the latest close. Without history
// it assumes a ±5% range around the current price.
func BuildWindow(chart *model.Chart, sessions int) model.PriceWindow {
	price := chart.Meta.Price
	w := model.PriceWindow{CurrentPrice: price}

	high, low, err := calculator.CalculateRecentRange(chart.Highs, chart.Lows, sessions)
	if err != nil || len(chart.Closes) == 0 {
		w.High = price * 1.05
		w.Low = price * 0.95
		w.Close = price
		return w
	}
	w.High = high
	w.Low = low
	w.Close = chart.Closes[len(chart.Closes)-1]
	return w
}
