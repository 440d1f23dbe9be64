package notifier

import (
	"strings"
	"testing"
	"time"

	"StockSentinel/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestStrengthIcon(t *testing.T) {
	tests := []struct {
		strength float64
		want     string
	}{
		{12, "🟢🔴"},
		{8, "🟢🔴"},
		{7.9, "🟢"},
		{5, "🟢"},
		{3, "🟡"},
		{2, "⚪"},
		{0, "⚪"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StrengthIcon(tt.strength), "strength %v", tt.strength)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		value    float64
		currency string
		want     string
	}{
		{35.5, "THB", "฿35.50"},
		{1234.5, "JPY", "¥1235"},
		{1234.4, "JPY", "¥1234"},
		{10, "EUR", "€10.00"},
		{10.129, "GBP", "£10.13"},
		{99.999, "USD", "$100.00"},
		{1, "", "$1.00"},
		{-1.5, "USD", "$-1.50"},
	}
	for _, tt := range tests {
		t.Run(tt.currency+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.value, tt.currency))
		})
	}
}

func TestFormatMarketCap(t *testing.T) {
	assert.Equal(t, "N/A", FormatMarketCap(0))
	assert.Equal(t, "2.95T", FormatMarketCap(2.95e12))
	assert.Equal(t, "1.50B", FormatMarketCap(1.5e9))
	assert.Equal(t, "250.00M", FormatMarketCap(2.5e8))
	assert.Equal(t, "999,999", FormatMarketCap(999999))
}

func referenceLevels() model.LevelSet {
	return model.LevelSet{
		Support: []model.Cluster{
			{Price: 99, Strength: 5},
			{Price: 97.64, Strength: 6},
			{Price: 90, Strength: 5},
		},
		Resistance: []model.Cluster{
			{Price: 100, Strength: 9},
			{Price: 110, Strength: 5},
			{Price: 120, Strength: 4},
		},
	}
}

func TestFormatLevels(t *testing.T) {
	got := FormatLevels(referenceLevels(), 100, "USD")
	want := "🛡️ *แนวรับ (Support)*\n" +
		"├ 🟢 ระดับ 1: $99.00 (1.0%)\n" +
		"├ 🟢 ระดับ 2: $97.64 (2.4%)\n" +
		"├ 🟢 ระดับ 3: $90.00 (10.0%)\n" +
		divider + "\n" +
		"🎯 *แนวต้าน (Resistance)*\n" +
		"├ 🟢🔴 ระดับ 1: $100.00 (0.0%)\n" +
		"├ 🟢 ระดับ 2: $110.00 (10.0%)\n" +
		"├ 🟡 ระดับ 3: $120.00 (20.0%)\n"
	assert.Equal(t, want, got)
}

func TestFormatLevels_Empty(t *testing.T) {
	got := FormatLevels(model.LevelSet{}, 100, "USD")
	assert.Contains(t, got, "ไม่พบแนวรับชัดเจน")
	assert.Contains(t, got, "ไม่พบแนวต้านชัดเจน")
}

func TestFormatStockReport(t *testing.T) {
	a := &model.StockAnalysis{
		Symbol:       "PTT.BK",
		CompanyName:  "PTT Public Company",
		Exchange:     "SET",
		Currency:     "THB",
		CurrentPrice: 100,
		Change:       -1.5,
		ChangePct:    -1.48,
		DayHigh:      101,
		DayLow:       98.5,
		Volume:       1234567,
		MarketCap:    2.8e12,
		Levels:       referenceLevels(),
	}
	now := time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC)
	got := FormatStockReport(a, now)

	assert.True(t, strings.HasPrefix(got, "🏢 *PTT.BK - PTT Public Company*\n"))
	assert.Contains(t, got, "├ 💰 ราคาปัจจุบัน: ฿100.00")
	assert.Contains(t, got, "├ 📊 เปลี่ยนแปลง: ฿-1.50 (-1.48%)")
	assert.Contains(t, got, "└ 💼 มูลค่าตลาด: 2.80T")
	assert.Contains(t, got, "└ 📦 Volume: 1,234,567")
	assert.Contains(t, got, "├ 🟢 ระดับ 1: ฿99.00 (1.0%)")
	assert.Contains(t, got, "🔴 ระวัง/ลดพอร์ต")
	assert.Contains(t, got, "5/3/2567 09:07:00")
	assert.NotContains(t, got, "±2/4/6%")

	a.ChangePct = 0
	a.Fallback = true
	got = FormatStockReport(a, now)
	assert.Contains(t, got, "🟢 พิจารณาซื้อ/ถือต่อ")
	assert.Contains(t, got, "(0.00%)")
	assert.Contains(t, got, "±2/4/6%")
}

func TestFormatStockReport_EscapesMarkdown(t *testing.T) {
	a := &model.StockAnalysis{Symbol: "X", CompanyName: "Foo_Bar *Corp*", Currency: "USD", CurrentPrice: 1}
	assert.Contains(t, FormatStockReport(a, time.Now()), `Foo\_Bar \*Corp\*`)
}

func TestFormatWorldIndices(t *testing.T) {
	got := FormatWorldIndices([]IndexQuote{
		{Name: "S&P 500 (US)", Price: 5000, Change: 25, ChangePct: 0.5, Currency: "USD"},
		{Name: "Nikkei 225 (Japan)", Price: 38000.4, Change: -100, ChangePct: -0.26, Currency: "JPY"},
		{Name: "Missing", Price: 0},
	})
	assert.Contains(t, got, "📈 *S&P 500 (US)*\n🟢 $5000.00 (+0.50%)")
	assert.Contains(t, got, "📉 *Nikkei 225 (Japan)*\n🔴 ¥38000 (-0.26%)")
	assert.NotContains(t, got, "Missing")

	assert.Equal(t, WorldEmptyText, FormatWorldIndices([]IndexQuote{{Name: "X"}}))
}

func TestFormatSearchResults(t *testing.T) {
	got := FormatSearchResults("apple", []model.SearchResult{
		{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ"},
	})
	assert.Contains(t, got, "✨ *ผลการค้นหา: 'apple'*")
	assert.Contains(t, got, "*1. 🏢 AAPL*\n   🏢 Apple Inc.\n   📍 NASDAQ\n")

	assert.Equal(t, "❌ *ไม่พบผลลัพธ์สำหรับ 'zzz'*", FormatSearchResults("zzz", nil))
}

func TestFormatWatchlistReport(t *testing.T) {
	analyses := []*model.StockAnalysis{
		{Symbol: "AAPL", Currency: "USD", CurrentPrice: 100, ChangePct: 1.2, Levels: referenceLevels()},
		{Symbol: "TSLA", Currency: "USD", CurrentPrice: 200, ChangePct: -3},
	}
	got := FormatWatchlistReport(analyses, []string{"BAD"}, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))

	assert.Contains(t, got, "2024-03-05")
	assert.Contains(t, got, "🟢 *AAPL* $100.00 (+1.20%)\n├ 🛡️ $99.00 🟢\n└ 🎯 $100.00 🟢🔴")
	assert.Contains(t, got, "🔴 *TSLA* $200.00 (-3.00%)\n├ 🛡️ -\n└ 🎯 -")
	assert.True(t, strings.HasSuffix(got, "❌ ไม่พบข้อมูล: BAD"))
}

func TestThaiTimestamp(t *testing.T) {
	assert.Equal(t, "18/10/2569 14:30:05", ThaiTimestamp(time.Date(2026, 10, 18, 14, 30, 5, 0, time.UTC)))
}
