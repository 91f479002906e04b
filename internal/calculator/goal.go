package calculator

import "github.com/shopspring/decimal"

// DefaultGoalShares is the IBIT share count that represents one BTC.
const DefaultGoalShares = 1756

// GoalProgress returns 100*shares/goal rounded to two decimals and capped at 100.
func GoalProgress(shares, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	hundred := decimal.NewFromInt(100)
	pct := decimal.NewFromFloat(shares).Div(decimal.NewFromFloat(goal)).Mul(hundred).Round(2)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	f, _ := pct.Float64()
	return f
}

// SharesFraction is the share count as a fraction of the goal.
func SharesFraction(shares, goal float64) float64 {
	if goal <= 0 || shares <= 0 {
		return 0
	}
	return shares / goal
}

// Value returns quantity*price rounded to cents.
func Value(quantity, price float64) float64 {
	f, _ := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price)).Round(2).Float64()
	return f
}
