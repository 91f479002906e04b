package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ChevesR/ibit-strategy-v5/internal/calculator"
	"github.com/ChevesR/ibit-strategy-v5/internal/dashboard"
	"github.com/ChevesR/ibit-strategy-v5/internal/model"
	"github.com/ChevesR/ibit-strategy-v5/internal/notifier"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F7931A")).
			Padding(0, 1).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	holdStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	monitorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	sellStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
)

func labelStyle(l model.Label) lipgloss.Style {
	switch l {
	case model.LabelHold, model.LabelHoldOrExercise:
		return holdStyle
	case model.LabelMonitor:
		return monitorStyle
	default:
		return sellStyle
	}
}

// renderReport lays the dashboard out as terminal sections.
func renderReport(d *dashboard.Dashboard) string {
	sections := []string{
		titleStyle.Render("IBIT Strategy Dashboard | " + d.GeneratedAt.Format("2006-01-02 15:04")),
		sectionStyle.Render(renderPrices(d)),
	}
	if d.Portfolio == nil {
		sections = append(sections, mutedStyle.Render(d.Hint))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}
	sections = append(sections,
		sectionStyle.Render(renderGoal(d.Portfolio)),
		sectionStyle.Render(renderOptions(d.Portfolio)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderPrices(d *dashboard.Dashboard) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Live prices") + "\n")
	fmt.Fprintf(&b, "%-8s %s\n", d.Prices.ReferenceSymbol, notifier.FormatMoney(d.Prices.ReferencePrice))
	fmt.Fprintf(&b, "%-8s %s\n", d.Prices.TrackingSymbol, notifier.FormatMoney(d.Prices.TrackingPrice))
	switch {
	case d.Model != nil:
		fmt.Fprintf(&b, "Power law: price = e^%.3f · t^%.3f (%s days of history)",
			d.Model.Intercept, d.Model.Slope, humanize.Comma(int64(len(d.Overlay))))
	case d.ModelError != "":
		b.WriteString(mutedStyle.Render("Power law unavailable: " + d.ModelError))
	}
	return b.String()
}

func renderGoal(pv *dashboard.PortfolioView) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Goal progress") + "\n")
	fmt.Fprintf(&b, "IBIT-equivalent shares: %s (IBIT %s, FBTC %s)\n",
		humanize.Commaf(pv.EquivalentShares), humanize.Commaf(pv.IBITShares), humanize.Commaf(pv.FBTCShares))
	fmt.Fprintf(&b, "Value: %s\n", notifier.FormatMoney(pv.CurrentValue))
	fmt.Fprintf(&b, "%s\n%s", notifier.ProgressBar(pv.GoalProgress, 40), notifier.GoalLine(pv))

	if pv.Projection == nil {
		return b.String()
	}
	fmt.Fprintf(&b, "\n1y power-law projection: %s\n", notifier.FormatMoney(pv.OneYearValue))
	b.WriteString(mutedStyle.Render("Yearly projection"))
	for _, pt := range yearly(pv.Projection) {
		fmt.Fprintf(&b, "\n  day %-6s %s", humanize.Comma(int64(pt.DayOffset)), notifier.FormatMoney(pt.Value))
	}
	return b.String()
}

// yearly samples the projection at the steps nearest to each whole year.
func yearly(p *model.Projection) []model.ProjectionPoint {
	if len(p.Points) < 2 {
		return p.Points
	}
	start := p.Points[0].DayOffset
	step := p.Points[1].DayOffset - start
	horizon := p.Points[len(p.Points)-1].DayOffset - start

	var out []model.ProjectionPoint
	seen := make(map[int]bool)
	for target := calculator.OneYearDays; target <= horizon; target += calculator.OneYearDays {
		i := calculator.NearestStep(len(p.Points), step, target)
		if seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, p.Points[i])
	}
	return out
}

func renderOptions(pv *dashboard.PortfolioView) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Strategy commentary"))
	if len(pv.Options) == 0 && len(pv.Errors) == 0 {
		b.WriteString("\n" + mutedStyle.Render("No call options in portfolio."))
	}
	for _, c := range pv.Options {
		line := fmt.Sprintf("%s $%sC", c.Holding.Expiry.Format("2006-01-02"), humanize.Ftoa(c.Holding.Strike))
		fmt.Fprintf(&b, "\n- %s → %s (%s)", line,
			labelStyle(c.Recommendation.Label).Render(c.Recommendation.Label.Display()),
			strings.Join(c.Recommendation.Rationale, ", "))
	}
	for _, e := range pv.Errors {
		b.WriteString("\n" + sellStyle.Render("! "+e))
	}
	return b.String()
}
