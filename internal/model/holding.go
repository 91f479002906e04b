package model

import (
	"fmt"
	"time"
)

// HoldingType classifies a portfolio row.
type HoldingType string

const (
	HoldingIBITShare  HoldingType = "IBIT Share"
	HoldingFBTCShare  HoldingType = "FBTC Share"
	HoldingCallOption HoldingType = "Call Option"
	HoldingOther      HoldingType = "Other"
)

// DefaultDelta is applied to option rows that carry no delta.
const DefaultDelta = 0.5

// Holding is one parsed portfolio row. Strike, Expiry and Delta are only
// meaningful for call options.
type Holding struct {
	Row      int         `json:"row"`
	Type     HoldingType `json:"type"`
	RawType  string      `json:"raw_type,omitempty"`
	Quantity float64     `json:"quantity"`
	Strike   float64     `json:"strike,omitempty"`
	Expiry   time.Time   `json:"expiry,omitzero"`
	Delta    float64     `json:"delta,omitempty"`
}

// IsShare reports whether the holding is one of the tracked ETF share types.
func (h Holding) IsShare() bool {
	return h.Type == HoldingIBITShare || h.Type == HoldingFBTCShare
}

// Portfolio is the set of holdings from one upload.
type Portfolio struct {
	Source     string    `json:"source"`
	UploadedAt time.Time `json:"uploaded_at"`
	Holdings   []Holding `json:"holdings"`
}

// Shares sums the quantity of all holdings of the given type.
func (p *Portfolio) Shares(t HoldingType) float64 {
	var sum float64
	for _, h := range p.Holdings {
		if h.Type == t {
			sum += h.Quantity
		}
	}
	return sum
}

// IBITEquivalentShares converts FBTC shares at fbtcRatio IBIT shares each and
// adds them to the IBIT share count.
func (p *Portfolio) IBITEquivalentShares(fbtcRatio float64) float64 {
	return p.Shares(HoldingIBITShare) + p.Shares(HoldingFBTCShare)*fbtcRatio
}

// Options returns the call option rows in upload order.
func (p *Portfolio) Options() []Holding {
	var opts []Holding
	for _, h := range p.Holdings {
		if h.Type == HoldingCallOption {
			opts = append(opts, h)
		}
	}
	return opts
}

// InvalidHoldingError reports a portfolio row whose field cannot be used.
type InvalidHoldingError struct {
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *InvalidHoldingError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: invalid %s %q: %s", e.Row, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
