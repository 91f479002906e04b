package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChevesR/ibit-strategy-v5/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Prices  map[string]float64
	History []model.PricePoint
	// Err fails price fetches, HistoryErr fails history fetches.
	Err        error
	HistoryErr error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, _ string, _ string) ([]model.PricePoint, error) {
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	if m.History != nil {
		return m.History, nil
	}
	return GenerateMockHistory(time.Now().AddDate(-5, 0, 0), 5*365), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ context.Context, symbol string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	p, ok := m.Prices[symbol]
	if !ok {
		return 0, fmt.Errorf("mock: no price for %s", symbol)
	}
	return p, nil
}

// GenerateMockHistory produces daily closes that oscillate around a power law.
func GenerateMockHistory(start time.Time, days int) []model.PricePoint {
	points := make([]model.PricePoint, days)
	for i := 0; i < days; i++ {
		off := float64(i + 1)
		base := math.Exp(-10) * math.Pow(off+1000, 2.5)
		points[i] = model.PricePoint{
			Time:  start.AddDate(0, 0, i),
			Close: base * (1 + 0.3*math.Sin(off/200)),
		}
	}
	return points
}

// Collector orchestrates price fetching for the reference and tracking symbols.
type Collector struct {
	Fetcher         Fetcher
	ReferenceSymbol string
	TrackingSymbol  string
	HistoryRange    string
	log             zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, referenceSymbol, trackingSymbol, historyRange string, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher:         fetcher,
		ReferenceSymbol: referenceSymbol,
		TrackingSymbol:  trackingSymbol,
		HistoryRange:    historyRange,
		log:             log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Collect fetches both live prices and the reference history. A failed
// history fetch is logged and leaves the history empty so prices can still be shown.
func (c *Collector) Collect(ctx context.Context) (*model.MarketSnapshot, error) {
	refPrice, err := c.Fetcher.FetchCurrentPrice(ctx, c.ReferenceSymbol)
	if err != nil {
		return nil, fmt.Errorf("fetch %s price: %w", c.ReferenceSymbol, err)
	}
	trackPrice, err := c.Fetcher.FetchCurrentPrice(ctx, c.TrackingSymbol)
	if err != nil {
		return nil, fmt.Errorf("fetch %s price: %w", c.TrackingSymbol, err)
	}

	snap := &model.MarketSnapshot{
		ReferenceSymbol: c.ReferenceSymbol,
		TrackingSymbol:  c.TrackingSymbol,
		ReferencePrice:  refPrice,
		TrackingPrice:   trackPrice,
		History:         model.PriceSeries{Symbol: c.ReferenceSymbol},
		FetchedAt:       time.Now(),
	}

	history, err := c.Fetcher.FetchHistory(ctx, c.ReferenceSymbol, c.HistoryRange)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", c.ReferenceSymbol).Msg("history fetch failed, model overlay unavailable")
	} else {
		snap.History.Points = history
	}

	c.log.Info().
		Float64("reference_price", refPrice).
		Float64("tracking_price", trackPrice).
		Int("history_points", len(snap.History.Points)).
		Msg("market snapshot collected")
	return snap, nil
}
