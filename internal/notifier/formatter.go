package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"StockSentinel/internal/model"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const divider = "⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯"

// WelcomeText is the reply to /start.
const WelcomeText = `🎯 *บอทวิเคราะห์หุ้น - Yahoo Finance* 📱

*🚀 ระบบวิเคราะห์หุ้น:*
• 📊 Yahoo Finance - ข้อมูลพื้นฐาน + แนวรับแนวต้านแบบไฮบริด
• 🛡️ แนวรับ-แนวต้านแบบไฮบริด (Pivot + Fibonacci + MA + Psychological)

*✨ ข้อมูลที่ได้รับ:*
• ราคาเรียลไทม์และเปลี่ยนแปลง
• แนวรับ-แนวต้านแบบไฮบริด
• มูลค่าตลาดและ Volume
• ข้อมูลบริษัท

*📋 วิธีการใช้งาน:*
พิมพ์สัญลักษณ์หุ้นเลย!
• 🏢 AAPL, TSLA, PTT.BK
• 📊 SPY, QQQ, VOO
• ₿ BTC-USD, ETH-USD

📍 *เริ่มต้นเลยโดยพิมพ์สัญลักษณ์หุ้น!*`

// HelpText is the reply to /help.
const HelpText = "📚 *คู่มือการใช้งาน*\n\n" +
	"*คำสั่งที่ใช้งานได้:*\n" +
	"/start - เริ่มต้นใช้งาน\n" +
	"/help - แสดงคู่มือนี้\n" +
	"/world - ดัชนีตลาดโลก\n" +
	"/search [คำค้น] - ค้นหาหุ้น\n\n" +
	"*ตัวอย่างการใช้งาน:*\n" +
	"• พิมพ์ `AAPL` เพื่อวิเคราะห์ Apple\n" +
	"• พิมพ์ `PTT.BK` สำหรับหุ้นไทย\n" +
	"• พิมพ์ `BTC-USD` สำหรับ Bitcoin"

// Short status texts used while a command is running or after it failed.
const (
	WorldLoadingText = "🌍 *กำลังโหลดดัชนีโลก...*"
	WorldEmptyText   = "❌ *ไม่สามารถโหลดข้อมูลดัชนีได้ในขณะนี้*"
	WorldErrorText   = "❌ *เกิดข้อผิดพลาดในการโหลดดัชนี*"
	SearchUsageText  = "❌ *รูปแบบคำสั่ง:* `/search [ชื่อ]`\nตัวอย่าง: `/search Apple`"
	SearchErrorText  = "❌ *เกิดข้อผิดพลาดในการค้นหา*"
)

// AnalyzingText is the loading message shown while symbol is analyzed.
func AnalyzingText(symbol string) string {
	return fmt.Sprintf("⏳ *กำลังวิเคราะห์ %s...*", escape(symbol))
}

// NotFoundText is shown when the price source has nothing for symbol.
func NotFoundText(symbol string) string {
	return fmt.Sprintf("❌ *ไม่พบข้อมูลสำหรับ '%s'*\n\n💡 *ข้อแนะนำ:*\n"+
		"• ตรวจสอบสัญลักษณ์ให้ถูกต้อง\n"+
		"• ตลาดไทยต้องมี .BK (เช่น PTT.BK)\n"+
		"• ใช้ `/search [ชื่อ]` ค้นหา", escape(symbol))
}

// AnalysisErrorText is shown when analyzing symbol failed unexpectedly.
func AnalysisErrorText(symbol string) string {
	return fmt.Sprintf("❌ *เกิดข้อผิดพลาดในการวิเคราะห์ %s*\n\nโปรดลองอีกครั้งในภายหลัง", escape(symbol))
}

// SearchingText is the loading message for /search.
func SearchingText(query string) string {
	return fmt.Sprintf("🔍 *กำลังค้นหา '%s'...*", escape(query))
}

// StrengthIcon maps a zone strength to its display marker.
func StrengthIcon(strength float64) string {
	switch {
	case strength >= 8:
		return "🟢🔴"
	case strength >= 5:
		return "🟢"
	case strength >= 3:
		return "🟡"
	default:
		return "⚪"
	}
}

// FormatCurrency renders value with the symbol of currency. JPY has no
// minor unit and is rounded to a whole number.
func FormatCurrency(value float64, currency string) string {
	switch currency {
	case "THB":
		return fmt.Sprintf("฿%.2f", value)
	case "JPY":
		return fmt.Sprintf("¥%.0f", math.Floor(value+0.5))
	case "EUR":
		return fmt.Sprintf("€%.2f", value)
	case "GBP":
		return fmt.Sprintf("£%.2f", value)
	default:
		return fmt.Sprintf("$%.2f", value)
	}
}

// FormatMarketCap abbreviates large capitalisations as T, B or M.
func FormatMarketCap(marketCap float64) string {
	switch {
	case marketCap == 0 || math.IsNaN(marketCap):
		return "N/A"
	case marketCap >= 1e12:
		return fmt.Sprintf("%.2fT", marketCap/1e12)
	case marketCap >= 1e9:
		return fmt.Sprintf("%.2fB", marketCap/1e9)
	case marketCap >= 1e6:
		return fmt.Sprintf("%.2fM", marketCap/1e6)
	default:
		return humanize.Commaf(marketCap)
	}
}

// FormatLevels renders the support and resistance block with each zone's
// distance from currentPrice.
func FormatLevels(levels model.LevelSet, currentPrice float64, currency string) string {
	var b strings.Builder

	b.WriteString("🛡️ *แนวรับ (Support)*\n")
	if len(levels.Support) == 0 {
		b.WriteString("├ ⚪ ไม่พบแนวรับชัดเจน\n")
	}
	for i, z := range levels.Support {
		b.WriteString(levelLine(i, z, distancePct(currentPrice-z.Price, currentPrice), currency))
	}

	b.WriteString(divider + "\n")

	b.WriteString("🎯 *แนวต้าน (Resistance)*\n")
	if len(levels.Resistance) == 0 {
		b.WriteString("├ ⚪ ไม่พบแนวต้านชัดเจน\n")
	}
	for i, z := range levels.Resistance {
		b.WriteString(levelLine(i, z, distancePct(z.Price-currentPrice, currentPrice), currency))
	}
	return b.String()
}

func levelLine(i int, z model.Cluster, dist float64, currency string) string {
	return fmt.Sprintf("├ %s ระดับ %d: %s (%.1f%%)\n", StrengthIcon(z.Strength), i+1, FormatCurrency(z.Price, currency), dist)
}

func distancePct(diff, price float64) float64 {
	if price == 0 {
		return 0
	}
	return diff / price * 100
}

// FormatStockReport renders the full analysis reply for one symbol.
func FormatStockReport(a *model.StockAnalysis, now time.Time) string {
	var b strings.Builder
	cur := a.Currency

	fmt.Fprintf(&b, "🏢 *%s - %s*\n", escape(a.Symbol), escape(a.CompanyName))
	fmt.Fprintf(&b, "📍 *ตลาด:* %s | 💰 *สกุลเงิน:* %s\n", escape(a.Exchange), cur)
	b.WriteString(divider + "\n\n")

	b.WriteString("💹 *ข้อมูลราคา*\n")
	fmt.Fprintf(&b, "├ 💰 ราคาปัจจุบัน: %s\n", FormatCurrency(a.CurrentPrice, cur))
	fmt.Fprintf(&b, "├ 📊 เปลี่ยนแปลง: %s (%s%%)\n", FormatCurrency(a.Change, cur), signedPct(a.ChangePct))
	fmt.Fprintf(&b, "├ 📈 สูงสุดวัน: %s\n", FormatCurrency(a.DayHigh, cur))
	fmt.Fprintf(&b, "├ 📉 ต่ำสุดวัน: %s\n", FormatCurrency(a.DayLow, cur))
	fmt.Fprintf(&b, "└ 💼 มูลค่าตลาด: %s\n\n", FormatMarketCap(a.MarketCap))

	b.WriteString("📊 *ข้อมูลพื้นฐาน*\n")
	fmt.Fprintf(&b, "└ 📦 Volume: %s\n\n", humanize.Commaf(a.Volume))

	b.WriteString(FormatLevels(a.Levels, a.CurrentPrice, cur))
	if a.Fallback {
		b.WriteString("⚠️ _ใช้แนวรับ-แนวต้านพื้นฐาน (±2/4/6%)_\n")
	}
	b.WriteString("\n")

	if a.ChangePct >= 0 {
		b.WriteString("💡 *คำแนะนำ:* 🟢 พิจารณาซื้อ/ถือต่อ\n\n")
	} else {
		b.WriteString("💡 *คำแนะนำ:* 🔴 ระวัง/ลดพอร์ต\n\n")
	}

	fmt.Fprintf(&b, "⏰ *อัพเดท:* %s\n\n", ThaiTimestamp(now))
	b.WriteString("_ใช้ /help เพื่อดูคำสั่งทั้งหมด_")
	return b.String()
}

// IndexQuote is one row of the world indices overview.
type IndexQuote struct {
	Name      string
	Price     float64
	Change    float64
	ChangePct float64
	Currency  string
}

// FormatWorldIndices renders the /world overview. Rows without a price are
// skipped; if none remain the "unavailable" text is returned.
func FormatWorldIndices(quotes []IndexQuote) string {
	var b strings.Builder
	b.WriteString("🌐 *ดัชนีตลาดโลก*\n" + divider + "\n\n")
	n := 0
	for _, q := range quotes {
		if q.Price <= 0 {
			continue
		}
		n++
		arrow, trend := "🟢", "📈"
		if q.Change < 0 {
			arrow, trend = "🔴", "📉"
		}
		fmt.Fprintf(&b, "%s *%s*\n", trend, escape(q.Name))
		fmt.Fprintf(&b, "%s %s (%s%%)\n\n", arrow, FormatCurrency(q.Price, q.Currency), signedPct(q.ChangePct))
	}
	if n == 0 {
		return WorldEmptyText
	}
	return b.String()
}

// FormatSearchResults renders /search matches for query.
func FormatSearchResults(query string, results []model.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("❌ *ไม่พบผลลัพธ์สำหรับ '%s'*", escape(query))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✨ *ผลการค้นหา: '%s'*\n\n", escape(query))
	for i, r := range results {
		fmt.Fprintf(&b, "*%d. 🏢 %s*\n", i+1, escape(r.Symbol))
		fmt.Fprintf(&b, "   🏢 %s\n", escape(r.Name))
		fmt.Fprintf(&b, "   📍 %s\n\n", escape(r.Exchange))
	}
	b.WriteString("_พิมพ์สัญลักษณ์เพื่อดูข้อมูลเต็ม_")
	return b.String()
}

// FormatWatchlistReport renders the scheduled digest: the nearest support
// and resistance of every watched symbol, plus the symbols that failed.
func FormatWatchlistReport(analyses []*model.StockAnalysis, failed []string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *สรุปแนวรับ-แนวต้าน* | %s\n%s\n\n", now.Format("2006-01-02"), divider)

	for _, a := range analyses {
		icon := "🟢"
		if a.ChangePct < 0 {
			icon = "🔴"
		}
		fmt.Fprintf(&b, "%s *%s* %s (%s%%)\n", icon, escape(a.Symbol),
			FormatCurrency(a.CurrentPrice, a.Currency), signedPct(a.ChangePct))
		fmt.Fprintf(&b, "├ 🛡️ %s\n", nearest(a.Levels.Support, a.Currency))
		fmt.Fprintf(&b, "└ 🎯 %s\n\n", nearest(a.Levels.Resistance, a.Currency))
	}
	if len(failed) > 0 {
		fmt.Fprintf(&b, "❌ ไม่พบข้อมูล: %s\n", escape(strings.Join(failed, ", ")))
	}
	return strings.TrimRight(b.String(), "\n")
}

func nearest(zones []model.Cluster, currency string) string {
	if len(zones) == 0 {
		return "-"
	}
	z := zones[0]
	return fmt.Sprintf("%s %s", FormatCurrency(z.Price, currency), StrengthIcon(z.Strength))
}

func signedPct(p float64) string {
	if p > 0 {
		return fmt.Sprintf("+%.2f", p)
	}
	return fmt.Sprintf("%.2f", p)
}

// ThaiTimestamp formats t the way th-TH locales print it: day/month/year in
// the Buddhist era followed by the wall clock.
func ThaiTimestamp(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d %s", t.Day(), int(t.Month()), t.Year()+543, t.Format("15:04:05"))
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
