package strategy

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/ChevesR/ibit-strategy-v5/internal/model"
)

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		strike  float64
		delta   float64
		days    int
		label   model.Label
		tag     string
		notTags []string
	}{
		{"deep ITM strong delta", 150, 100, 0.8, 200, model.LabelHoldOrExercise, TagITM, []string{TagOTM}},
		{"OTM healthy", 80, 100, 0.5, 200, model.LabelHold, TagOTM, []string{TagITM}},
		{"ITM but tiny delta", 150, 100, 0.1, 200, model.LabelConsiderSelling, "", []string{TagITM, TagOTM}},
		{"near expiry OTM", 90, 100, 0.5, 10, model.LabelConsiderSelling, TagOTM, nil},
		{"within 90 days", 90, 100, 0.5, 60, model.LabelMonitor, TagOTM, nil},
		{"low delta far out", 90, 100, 0.3, 300, model.LabelMonitor, TagOTM, nil},
		{"ITM overrides sell window", 150, 100, 0.9, 5, model.LabelHoldOrExercise, TagITM, nil},
		{"expired still sells", 90, 100, 0.5, -3, model.LabelConsiderSelling, TagOTM, nil},
		{"at the money is OTM", 100, 100, 0.5, 200, model.LabelHold, TagOTM, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Classify(tt.price, tt.strike, tt.delta, tt.days)
			if rec.Label != tt.label {
				t.Errorf("expected %s, got %s (rationale %v)", tt.label, rec.Label, rec.Rationale)
			}
			if tt.tag != "" && !slices.Contains(rec.Rationale, tt.tag) {
				t.Errorf("expected rationale to contain %q, got %v", tt.tag, rec.Rationale)
			}
			for _, nt := range tt.notTags {
				if slices.Contains(rec.Rationale, nt) {
					t.Errorf("rationale should not contain %q, got %v", nt, rec.Rationale)
				}
			}
		})
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		delta float64
		days  int
		label model.Label
	}{
		{"days exactly 30", 90, 0.5, 30, model.LabelMonitor},
		{"days exactly 90", 90, 0.5, 90, model.LabelHold},
		{"delta exactly 0.2", 90, 0.2, 200, model.LabelMonitor},
		{"delta exactly 0.4", 90, 0.4, 200, model.LabelHold},
		{"delta exactly 0.7 ITM", 150, 0.7, 200, model.LabelHold},
	}
	for _, tt := range tests {
		rec := Classify(tt.price, 100, tt.delta, tt.days)
		if rec.Label != tt.label {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.label, rec.Label)
		}
	}
}

func TestClassify_RationaleStartsWithInputs(t *testing.T) {
	rec := Classify(80, 100, 0.5, 200)
	if len(rec.Rationale) < 2 {
		t.Fatalf("expected at least 2 rationale lines, got %v", rec.Rationale)
	}
	if rec.Rationale[0] != "delta 0.50" || rec.Rationale[1] != "200 days left" {
		t.Errorf("unexpected leading rationale: %v", rec.Rationale[:2])
	}
}

func TestClassify_RationaleMatchesFinalLabel(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		delta     float64
		days      int
		rationale []string
	}{
		{"exercise replaces sell", 150, 0.9, 5, []string{"delta 0.90", "5 days left", TagITM}},
		{"exercise replaces monitor", 150, 0.8, 60, []string{"delta 0.80", "60 days left", TagITM}},
		{"sell keeps its reason", 90, 0.5, 10, []string{"delta 0.50", "10 days left", "low chance of profitability unless the underlying spikes", TagOTM}},
		{"monitor keeps its reason", 90, 0.5, 60, []string{"delta 0.50", "60 days left", "low delta or near expiry", TagOTM}},
		{"hold", 80, 0.5, 200, []string{"delta 0.50", "200 days left", TagOTM, "good delta and time left"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Classify(tt.price, 100, tt.delta, tt.days)
			if !slices.Equal(rec.Rationale, tt.rationale) {
				t.Errorf("expected rationale %v, got %v", tt.rationale, rec.Rationale)
			}
		})
	}
}

func TestClassifyHolding(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h := model.Holding{Row: 4, Type: model.HoldingCallOption, Strike: 60, Expiry: now.AddDate(0, 0, 201), Delta: 0.8}

	c, err := ClassifyHolding(70, h, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DaysToExpiry != 201 || !c.InTheMoney {
		t.Errorf("unexpected commentary: %+v", c)
	}
	if c.Recommendation.Label != model.LabelHoldOrExercise {
		t.Errorf("expected HoldOrExercise, got %s", c.Recommendation.Label)
	}
}

func TestClassifyHolding_InvalidFields(t *testing.T) {
	now := time.Now()
	base := model.Holding{Row: 7, Type: model.HoldingCallOption, Strike: 60, Expiry: now.AddDate(0, 1, 0), Delta: 0.5}

	tests := []struct {
		field  string
		mutate func(h *model.Holding)
	}{
		{"Type", func(h *model.Holding) { h.Type = model.HoldingIBITShare }},
		{"Strike", func(h *model.Holding) { h.Strike = 0 }},
		{"Strike", func(h *model.Holding) { h.Strike = math.NaN() }},
		{"Expiry", func(h *model.Holding) { h.Expiry = time.Time{} }},
		{"Delta", func(h *model.Holding) { h.Delta = 1.5 }},
		{"Delta", func(h *model.Holding) { h.Delta = -0.1 }},
	}
	for _, tt := range tests {
		h := base
		tt.mutate(&h)
		_, err := ClassifyHolding(70, h, now)
		var ihe *model.InvalidHoldingError
		if !errors.As(err, &ihe) {
			t.Fatalf("%s: expected InvalidHoldingError, got %v", tt.field, err)
		}
		if ihe.Field != tt.field || ihe.Row != 7 {
			t.Errorf("expected field %s row 7, got %s row %d", tt.field, ihe.Field, ihe.Row)
		}
	}

	if _, err := ClassifyHolding(0, base, now); err == nil {
		t.Error("expected error without a current price")
	}
}
