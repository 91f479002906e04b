package model

// Label is the discrete outcome of the option classifier.
type Label string

const (
	LabelHold            Label = "Hold"
	LabelHoldOrExercise  Label = "HoldOrExercise"
	LabelMonitor         Label = "Monitor"
	LabelConsiderSelling Label = "ConsiderSelling"
)

// Display returns the label as shown on the dashboard.
func (l Label) Display() string {
	switch l {
	case LabelHold:
		return "🟩 Hold"
	case LabelHoldOrExercise:
		return "🟩 Hold or Exercise"
	case LabelMonitor:
		return "🟧 Monitor"
	case LabelConsiderSelling:
		return "🟥 Consider Selling"
	default:
		return string(l)
	}
}

// Recommendation is the classifier output for one option position.
type Recommendation struct {
	Label     Label    `json:"label"`
	Rationale []string `json:"rationale"`
}

// OptionCommentary is a recommendation together with the position it was
// computed for.
type OptionCommentary struct {
	Holding        Holding        `json:"holding"`
	DaysToExpiry   int            `json:"days_to_expiry"`
	InTheMoney     bool           `json:"in_the_money"`
	Recommendation Recommendation `json:"recommendation"`
}
