package model

import "time"

// PricePoint is a single daily close.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// PriceSeries holds a chronologically ordered close series for one symbol.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Closes returns the close prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// MarketSnapshot is the result of one refresh of the price feed.
type MarketSnapshot struct {
	ReferenceSymbol string      `json:"reference_symbol"`
	TrackingSymbol  string      `json:"tracking_symbol"`
	ReferencePrice  float64     `json:"reference_price"`
	TrackingPrice   float64     `json:"tracking_price"`
	History         PriceSeries `json:"-"`
	FetchedAt       time.Time   `json:"fetched_at"`
}
