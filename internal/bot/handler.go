// Package bot implements the chat commands: a symbol analysis for free text,
// plus /start, /help, /world and /search.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockSentinel/internal/cache"
	"StockSentinel/internal/collector"
	"StockSentinel/internal/logger"
	"StockSentinel/internal/metrics"
	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/recorder"
)

// SearchLimit caps the number of /search matches shown.
const SearchLimit = 6

// WorldIndices is the /world watchlist, in display order.
var WorldIndices = []struct {
	Symbol string
	Name   string
}{
	{"^GSPC", "S&P 500 (US)"},
	{"^DJI", "Dow Jones (US)"},
	{"^IXIC", "NASDAQ (US)"},
	{"^FTSE", "FTSE 100 (UK)"},
	{"^N225", "Nikkei 225 (Japan)"},
	{"^HSI", "Hang Seng (HK)"},
	{"^SET.BK", "SET Index (Thailand)"},
}

// Messenger sends and edits chat messages.
type Messenger interface {
	SendTo(chatID int64, text string) (int, error)
	Edit(chatID int64, messageID int, text string) error
}

// Analyzer produces the level analysis for a symbol.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*model.StockAnalysis, error)
}

// Searcher looks up symbols by name.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error)
}

// Handler dispatches chat updates.
type Handler struct {
	messenger Messenger
	analyzer  Analyzer
	searcher  Searcher
	cache     cache.Cache
	cacheTTL  time.Duration
	recorder  recorder.Recorder
	log       *logger.Logger
	now       func() time.Time
}

// NewHandler wires a Handler. cache and rec may be nil.
func NewHandler(m Messenger, a Analyzer, s Searcher, c cache.Cache, ttl time.Duration, rec recorder.Recorder, log *logger.Logger) *Handler {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Handler{
		messenger: m,
		analyzer:  a,
		searcher:  s,
		cache:     c,
		cacheTTL:  ttl,
		recorder:  rec,
		log:       log.Component("bot"),
		now:       time.Now,
	}
}

// HandleUpdate answers one incoming message. Lookup failures are reported to
// the chat; the returned error means the chat itself could not be reached.
func (h *Handler) HandleUpdate(ctx context.Context, u notifier.Update) error {
	text := strings.TrimSpace(u.Text)
	if text == "" {
		return nil
	}
	if !strings.HasPrefix(text, "/") {
		metrics.Commands.WithLabelValues("symbol").Inc()
		return h.analyzeSymbol(ctx, u.ChatID, strings.ToUpper(text))
	}

	cmd, args := splitCommand(text)
	switch cmd {
	case "/start":
		metrics.Commands.WithLabelValues("start").Inc()
		return h.reply(u.ChatID, notifier.WelcomeText)
	case "/help":
		metrics.Commands.WithLabelValues("help").Inc()
		return h.reply(u.ChatID, notifier.HelpText)
	case "/world":
		metrics.Commands.WithLabelValues("world").Inc()
		return h.world(ctx, u.ChatID)
	case "/search":
		metrics.Commands.WithLabelValues("search").Inc()
		return h.search(ctx, u.ChatID, args)
	default:
		metrics.Commands.WithLabelValues("unknown").Inc()
		h.log.Debugw("ignoring unknown command", "command", cmd, "chat_id", u.ChatID)
		return nil
	}
}

// splitCommand separates "/cmd@bot rest of text" into "/cmd" and "rest of text".
func splitCommand(text string) (string, string) {
	cmd, args, _ := strings.Cut(text, " ")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

func (h *Handler) reply(chatID int64, text string) error {
	if _, err := h.messenger.SendTo(chatID, text); err != nil {
		return fmt.Errorf("reply to %d: %w", chatID, err)
	}
	return nil
}

// progress sends a loading message and returns a func that replaces it.
func (h *Handler) progress(chatID int64, loading string) (func(string) error, error) {
	id, err := h.messenger.SendTo(chatID, loading)
	if err != nil {
		return nil, fmt.Errorf("send loading message to %d: %w", chatID, err)
	}
	return func(text string) error {
		if err := h.messenger.Edit(chatID, id, text); err != nil {
			h.log.Warnw("edit failed, sending a new message", "chat_id", chatID, "error", err)
			return h.reply(chatID, text)
		}
		return nil
	}, nil
}

func (h *Handler) analyzeSymbol(ctx context.Context, chatID int64, symbol string) error {
	done, err := h.progress(chatID, notifier.AnalyzingText(symbol))
	if err != nil {
		return err
	}

	a, err := h.Lookup(ctx, symbol)
	switch {
	case errors.Is(err, collector.ErrSymbolNotFound), errors.Is(err, collector.ErrNoData):
		return done(notifier.NotFoundText(symbol))
	case err != nil:
		h.log.Errorw("analysis failed", "symbol", symbol, "error", err)
		return done(notifier.AnalysisErrorText(symbol))
	}
	return done(notifier.FormatStockReport(a, h.now()))
}

// Lookup returns the analysis for symbol from the cache, or computes,
// records and caches a fresh one.
func (h *Handler) Lookup(ctx context.Context, symbol string) (*model.StockAnalysis, error) {
	key := cache.StockKey(symbol)

	var cached model.StockAnalysis
	ok, err := h.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		h.log.Warnw("cache read failed", "key", key, "error", err)
	case ok:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return &cached, nil
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	a, err := h.analyzer.Analyze(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := h.cache.Set(ctx, key, a, h.cacheTTL); err != nil {
		h.log.Warnw("cache write failed", "key", key, "error", err)
	}
	if err := h.recorder.RecordAnalysis(recorder.FromAnalysis(a)); err != nil {
		h.log.Errorw("record analysis failed", "symbol", a.Symbol, "error", err)
	}
	return a, nil
}

func (h *Handler) world(ctx context.Context, chatID int64) error {
	done, err := h.progress(chatID, notifier.WorldLoadingText)
	if err != nil {
		return err
	}

	quotes := make([]notifier.IndexQuote, 0, len(WorldIndices))
	for _, idx := range WorldIndices {
		if ctx.Err() != nil {
			return done(notifier.WorldErrorText)
		}
		a, err := h.Lookup(ctx, idx.Symbol)
		if err != nil {
			h.log.Warnw("index lookup failed", "symbol", idx.Symbol, "error", err)
			continue
		}
		quotes = append(quotes, notifier.IndexQuote{
			Name:      idx.Name,
			Price:     a.CurrentPrice,
			Change:    a.Change,
			ChangePct: a.ChangePct,
			Currency:  a.Currency,
		})
	}
	return done(notifier.FormatWorldIndices(quotes))
}

func (h *Handler) search(ctx context.Context, chatID int64, query string) error {
	if query == "" {
		return h.reply(chatID, notifier.SearchUsageText)
	}
	done, err := h.progress(chatID, notifier.SearchingText(query))
	if err != nil {
		return err
	}
	results, err := h.searcher.Search(ctx, query, SearchLimit)
	if err != nil {
		h.log.Errorw("search failed", "query", query, "error", err)
		return done(notifier.SearchErrorText)
	}
	return done(notifier.FormatSearchResults(query, results))
}
