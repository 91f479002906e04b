package strategy

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ChevesR/ibit-strategy-v5/internal/calculator"
	"github.com/ChevesR/ibit-strategy-v5/internal/model"
)

// Decision thresholds. Comparisons are strict, so a value sitting exactly on
// a threshold falls to the less aggressive branch.
const (
	SellDays      = 30
	MonitorDays   = 90
	SellDelta     = 0.2
	MonitorDelta  = 0.4
	ExerciseDelta = 0.7
)

// Rationale tags appended for moneyness.
const (
	TagITM = "ITM"
	TagOTM = "OTM"
)

// Classify maps one call position to a recommendation. Rules are applied in
// order and a later rule's label replaces an earlier one. The rationale keeps
// the inputs and moneyness, plus the explanation of the label that stands.
func Classify(currentPrice, strike, delta float64, daysToExpiry int) model.Recommendation {
	rec := model.Recommendation{
		Label: model.LabelHold,
		Rationale: []string{
			"delta " + strconv.FormatFloat(delta, 'f', 2, 64),
			fmt.Sprintf("%d days left", daysToExpiry),
		},
	}

	var reason string
	if daysToExpiry < SellDays || delta < SellDelta {
		rec.Label = model.LabelConsiderSelling
		reason = "low chance of profitability unless the underlying spikes"
	} else if daysToExpiry < MonitorDays || delta < MonitorDelta {
		rec.Label = model.LabelMonitor
		reason = "low delta or near expiry"
	}

	itm := currentPrice > strike
	if itm && delta > ExerciseDelta {
		rec.Label = model.LabelHoldOrExercise
		rec.Rationale = append(rec.Rationale, TagITM)
		return rec
	}

	if reason != "" {
		rec.Rationale = append(rec.Rationale, reason)
	}
	if !itm {
		rec.Rationale = append(rec.Rationale, TagOTM)
	}
	if rec.Label == model.LabelHold {
		rec.Rationale = append(rec.Rationale, "good delta and time left")
	}
	return rec
}

// ClassifyHolding validates an option holding and classifies it against the
// tracking instrument's current price as of now.
func ClassifyHolding(currentPrice float64, h model.Holding, now time.Time) (model.OptionCommentary, error) {
	if h.Type != model.HoldingCallOption {
		return model.OptionCommentary{}, &model.InvalidHoldingError{Row: h.Row, Field: "Type", Value: string(h.Type), Reason: "not a call option"}
	}
	if !(h.Strike > 0) || math.IsInf(h.Strike, 0) {
		return model.OptionCommentary{}, &model.InvalidHoldingError{Row: h.Row, Field: "Strike", Value: formatFloat(h.Strike), Reason: "must be a positive number"}
	}
	if h.Expiry.IsZero() {
		return model.OptionCommentary{}, &model.InvalidHoldingError{Row: h.Row, Field: "Expiry", Reason: "missing expiry date"}
	}
	if math.IsNaN(h.Delta) || h.Delta < 0 || h.Delta > 1 {
		return model.OptionCommentary{}, &model.InvalidHoldingError{Row: h.Row, Field: "Delta", Value: formatFloat(h.Delta), Reason: "must be between 0 and 1"}
	}
	if !(currentPrice > 0) {
		return model.OptionCommentary{}, fmt.Errorf("classify row %d: no current price for the underlying", h.Row)
	}

	days := calculator.DaysToExpiry(h.Expiry, now)
	return model.OptionCommentary{
		Holding:        h,
		DaysToExpiry:   days,
		InTheMoney:     currentPrice > h.Strike,
		Recommendation: Classify(currentPrice, h.Strike, h.Delta, days),
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
