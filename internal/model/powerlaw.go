package model

import "math"

// PowerLawModel is price(t) = exp(Intercept) * t^Slope, with t a day offset >= 1.
type PowerLawModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Price evaluates the model at the given day offset. Offsets past the fitted
// range extrapolate.
func (m PowerLawModel) Price(dayOffset int) float64 {
	return math.Exp(m.Intercept) * math.Pow(float64(dayOffset), m.Slope)
}

// OverlayPoint pairs an observed close with the model value on the same day.
type OverlayPoint struct {
	DayOffset int     `json:"day_offset"`
	Actual    float64 `json:"actual"`
	Model     float64 `json:"model"`
}

// ProjectionPoint is one step of a projected value trajectory.
type ProjectionPoint struct {
	DayOffset int     `json:"day_offset"`
	Value     float64 `json:"value"`
}

// Projection is a projected value trajectory plus the point closest to one
// year past its start.
type Projection struct {
	Points       []ProjectionPoint `json:"points"`
	OneYearIndex int               `json:"one_year_index"`
	OneYear      ProjectionPoint   `json:"one_year"`
}
