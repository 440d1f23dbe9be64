package model

import "time"

// StockAnalysis is the cached, display-ready result of analysing one symbol.
type StockAnalysis struct {
	Symbol        string      `json:"symbol"`
	CompanyName   string      `json:"company_name"`
	Exchange      string      `json:"exchange"`
	Currency      string      `json:"currency"`
	CurrentPrice  float64     `json:"current_price"`
	PreviousClose float64     `json:"previous_close"`
	Change        float64     `json:"change"`
	ChangePct     float64     `json:"change_pct"`
	Volume        float64     `json:"volume"`
	MarketCap     float64     `json:"market_cap"`
	DayHigh       float64     `json:"day_high"`
	DayLow        float64     `json:"day_low"`
	Window        PriceWindow `json:"window"`
	Levels        LevelSet    `json:"levels"`
	Fallback      bool        `json:"fallback"`
	DataSource    string      `json:"data_source"`
	AnalyzedAt    time.Time   `json:"analyzed_at"`
}
