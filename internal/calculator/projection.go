package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChevesR/ibit-strategy-v5/internal/model"
)

// OneYearDays is the distance from the projection start used for the
// one-year scalar.
const OneYearDays = 365

// ErrInvalidProjection is returned for out-of-range projection parameters.
var ErrInvalidProjection = errors.New("invalid projection parameters")

// Project evaluates the model every stepDays from lastDayOffset up to
// lastDayOffset+horizonDays (the last step not exceeding the horizon) and
// scales each model price by sharesFraction.
func Project(m model.PowerLawModel, lastDayOffset int, sharesFraction float64, horizonDays, stepDays int) (model.Projection, error) {
	switch {
	case stepDays <= 0:
		return model.Projection{}, fmt.Errorf("%w: step_days must be positive, got %d", ErrInvalidProjection, stepDays)
	case horizonDays < 0:
		return model.Projection{}, fmt.Errorf("%w: horizon_days must not be negative, got %d", ErrInvalidProjection, horizonDays)
	case sharesFraction < 0 || math.IsNaN(sharesFraction):
		return model.Projection{}, fmt.Errorf("%w: shares_fraction must not be negative, got %v", ErrInvalidProjection, sharesFraction)
	case lastDayOffset < 1:
		return model.Projection{}, fmt.Errorf("%w: last_day_offset must be at least 1, got %d", ErrInvalidProjection, lastDayOffset)
	}

	n := horizonDays/stepDays + 1
	points := make([]model.ProjectionPoint, n)
	for i := range points {
		off := lastDayOffset + i*stepDays
		points[i] = model.ProjectionPoint{DayOffset: off, Value: m.Price(off) * sharesFraction}
	}

	idx := NearestStep(n, stepDays, OneYearDays)
	return model.Projection{Points: points, OneYearIndex: idx, OneYear: points[idx]}, nil
}

// NearestStep returns the index in [0, n) whose distance i*stepDays is
// closest to target. Ties go to the earlier index.
func NearestStep(n, stepDays, target int) int {
	best := 0
	bestDist := abs(target)
	for i := 1; i < n; i++ {
		if d := abs(i*stepDays - target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
