package calculator

import (
	"math"
	"time"
)

// DayOffset returns the number of whole days from start to t, plus one, so
// the first observation sits at offset 1 and log(offset) is defined.
func DayOffset(start, t time.Time) int {
	return wholeDays(t.Sub(start)) + 1
}

// DaysToExpiry returns the whole days left until expiry, floored. Expired
// contracts give negative values.
func DaysToExpiry(expiry, now time.Time) int {
	return wholeDays(expiry.Sub(now))
}

func wholeDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}
