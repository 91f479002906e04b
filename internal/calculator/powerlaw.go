package calculator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ChevesR/ibit-strategy-v5/internal/model"
)

// ErrInsufficientData is matched by every InsufficientDataError.
var ErrInsufficientData = errors.New("insufficient data")

// InsufficientDataError reports a fit attempted on fewer than two usable points.
type InsufficientDataError struct {
	Valid int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("power-law fit needs at least 2 positive prices on distinct days, got %d", e.Valid)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// FilterPositive returns a copy of the series without non-positive or
// non-finite closes.
func FilterPositive(s model.PriceSeries) model.PriceSeries {
	out := model.PriceSeries{Symbol: s.Symbol, Points: make([]model.PricePoint, 0, len(s.Points))}
	for _, p := range s.Points {
		if validPrice(p.Close) {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Fit runs an ordinary least-squares regression of ln(price) on ln(day offset)
// and returns the resulting power-law model. Day offsets are measured from the
// first point of the series. Points with a non-positive close are ignored.
func Fit(series model.PriceSeries) (model.PowerLawModel, error) {
	pts := FilterPositive(series).Points
	if len(pts) < 2 {
		return model.PowerLawModel{}, &InsufficientDataError{Valid: len(pts)}
	}

	start := pts[0].Time
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	distinct := map[int]struct{}{}
	for i, p := range pts {
		off := DayOffset(start, p.Time)
		if off < 1 {
			return model.PowerLawModel{}, fmt.Errorf("series not sorted: point %d precedes the first point", i)
		}
		distinct[off] = struct{}{}
		xs[i] = math.Log(float64(off))
		ys[i] = math.Log(p.Close)
	}
	// A single distinct x makes the slope undefined.
	if len(distinct) < 2 {
		return model.PowerLawModel{}, &InsufficientDataError{Valid: len(distinct)}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return model.PowerLawModel{Slope: slope, Intercept: intercept}, nil
}

// Overlay evaluates m at every point of the series for side-by-side plotting.
func Overlay(series model.PriceSeries, m model.PowerLawModel) []model.OverlayPoint {
	pts := FilterPositive(series).Points
	if len(pts) == 0 {
		return nil
	}
	start := pts[0].Time
	out := make([]model.OverlayPoint, len(pts))
	for i, p := range pts {
		off := DayOffset(start, p.Time)
		out[i] = model.OverlayPoint{DayOffset: off, Actual: p.Close, Model: m.Price(off)}
	}
	return out
}

// LastDayOffset returns the day offset of the final positive point, or 0 when
// there is none.
func LastDayOffset(series model.PriceSeries) int {
	pts := FilterPositive(series).Points
	if len(pts) == 0 {
		return 0
	}
	return DayOffset(pts[0].Time, pts[len(pts)-1].Time)
}
