package collector

import (
	"context"

	"github.com/ChevesR/ibit-strategy-v5/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol, rng string) ([]model.PricePoint, error)
	FetchCurrentPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}
