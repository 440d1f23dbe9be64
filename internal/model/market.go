package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ChartMeta is the quote summary returned alongside a price history.
type ChartMeta struct {
	Symbol        string
	LongName      string
	Exchange      string
	Currency      string
	Price         float64
	PreviousClose float64
	Volume        float64
	MarketCap     float64
	DayHigh       float64
	DayLow        float64
}

// Chart holds raw price data for one instrument. The High/Low/Close series
// only contain non-null samples and may differ in length.
type Chart struct {
	Meta      ChartMeta
	Bars      []OHLCV
	Highs     []float64
	Lows      []float64
	Closes    []float64
	FetchedAt time.Time
}

// SearchResult is one entry of a symbol search.
type SearchResult struct {
	Symbol   string
	Name     string
	Exchange string
}
