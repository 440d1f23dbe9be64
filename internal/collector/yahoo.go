package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"StockSentinel/internal/metrics"
	"StockSentinel/internal/model"

	"golang.org/x/time/rate"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooOptions configures a YahooFetcher.
type YahooOptions struct {
	BaseURL           string
	UserAgent         string
	Range             string
	Interval          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Proxy             string
}

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	UserAgent string
	Range     string
	Interval  string
	Client    *http.Client
	limiter   *rate.Limiter
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(opts YahooOptions) *YahooFetcher {
	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = yahooBaseURL
	}
	if opts.Range == "" {
		opts.Range = "3mo"
	}
	if opts.Interval == "" {
		opts.Interval = "1d"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &YahooFetcher{
		BaseURL:   opts.BaseURL,
		UserAgent: opts.UserAgent,
		Range:     opts.Range,
		Interval:  opts.Interval,
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				LongName             string  `json:"longName"`
				ExchangeName         string  `json:"exchangeName"`
				Currency             string  `json:"currency"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				PreviousClose        float64 `json:"previousClose"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				RegularMarketVolume  float64 `json:"regularMarketVolume"`
				MarketCap            float64 `json:"marketCap"`
				RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooSearch struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		LongName  string `json:"longname"`
		ShortName string `json:"shortname"`
		ExchDisp  string `json:"exchDisp"`
	} `json:"quotes"`
}

// FetchChart downloads the daily chart and quote summary for symbol.
func (f *YahooFetcher) FetchChart(ctx context.Context, symbol string) (chart *model.Chart, err error) {
	start := time.Now()
	defer func() { metrics.ObserveFetch(f.Name(), start, err) }()

	q := url.Values{}
	q.Set("range", f.Range)
	q.Set("interval", f.Interval)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(symbol), q.Encode())

	body, status, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrSymbolNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", status, truncate(body, 200))
	}

	var raw yahooChart
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if raw.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error %s: %s: %w", raw.Chart.Error.Code, raw.Chart.Error.Description, ErrSymbolNotFound)
	}
	if len(raw.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	result := raw.Chart.Result[0]
	meta := result.Meta
	prevClose := meta.PreviousClose
	if prevClose == 0 {
		prevClose = meta.ChartPreviousClose
	}
	chart = &model.Chart{
		Meta: model.ChartMeta{
			Symbol:        meta.Symbol,
			LongName:      meta.LongName,
			Exchange:      meta.ExchangeName,
			Currency:      meta.Currency,
			Price:         meta.RegularMarketPrice,
			PreviousClose: prevClose,
			Volume:        meta.RegularMarketVolume,
			MarketCap:     meta.MarketCap,
			DayHigh:       meta.RegularMarketDayHigh,
			DayLow:        meta.RegularMarketDayLow,
		},
		FetchedAt: time.Now(),
	}

	if len(result.Indicators.Quote) == 0 {
		return chart, nil
	}
	quote := result.Indicators.Quote[0]
	chart.Highs = compact(quote.High)
	chart.Lows = compact(quote.Low)
	chart.Closes = compact(quote.Close)

	for i, ts := range result.Timestamp {
		h, l, c := at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if h == nil || l == nil || c == nil {
			continue // skip null bars (holidays etc.)
		}
		bar := model.OHLCV{Time: time.Unix(ts, 0), High: *h, Low: *l, Close: *c}
		if o := at(quote.Open, i); o != nil {
			bar.Open = *o
		}
		if v := at(quote.Volume, i); v != nil {
			bar.Volume = *v
		}
		chart.Bars = append(chart.Bars, bar)
	}
	return chart, nil
}

// Search looks up symbols matching query.
func (f *YahooFetcher) Search(ctx context.Context, query string, limit int) (results []model.SearchResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveFetch(f.Name()+"_search", start, err) }()

	q := url.Values{}
	q.Set("q", query)
	q.Set("quotesCount", strconv.Itoa(limit))
	q.Set("newsCount", "0")
	u := fmt.Sprintf("%s/v1/finance/search?%s", f.BaseURL, q.Encode())

	body, status, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yahoo search: status %d", status)
	}
	var raw yahooSearch
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("yahoo search decode: %w", err)
	}

	for _, sq := range raw.Quotes {
		if len(results) == limit {
			break
		}
		name := sq.LongName
		if name == "" {
			name = sq.ShortName
		}
		results = append(results, model.SearchResult{Symbol: sq.Symbol, Name: name, Exchange: sq.ExchDisp})
	}
	return results, nil
}

func (f *YahooFetcher) get(ctx context.Context, u string) ([]byte, int, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("yahoo rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("yahoo read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func compact(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
