package collector

import (
	"context"
	"errors"

	"StockSentinel/internal/model"
)

var (
	// ErrNoData means the source answered but returned no usable chart.
	ErrNoData = errors.New("no data returned")
	// ErrSymbolNotFound means the symbol is unknown or has no current price.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchChart(ctx context.Context, symbol string) (*model.Chart, error)
	Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error)
	Name() string
}
