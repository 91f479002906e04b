package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/ChevesR/ibit-strategy-v5/internal/dashboard"
	"github.com/ChevesR/ibit-strategy-v5/internal/model"
)

// FormatMoney renders v as "$1,234.56".
func FormatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(whole.IntPart()), cents)
}

// ProgressBar draws pct (0-100) as a bar of the given width.
func ProgressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// OptionLine describes one option position, e.g.
// "2026-01-16 $60C → 🟩 Hold or Exercise (delta 0.80, 200 days left, ITM)".
func OptionLine(c model.OptionCommentary) string {
	return fmt.Sprintf("%s $%sC → %s (%s)",
		c.Holding.Expiry.Format("2006-01-02"),
		humanize.Ftoa(c.Holding.Strike),
		c.Recommendation.Label.Display(),
		strings.Join(c.Recommendation.Rationale, ", "))
}

// GoalLine is the caption under the progress bar.
func GoalLine(pv *dashboard.PortfolioView) string {
	return fmt.Sprintf("%s%% toward 1 BTC (%s IBIT)",
		humanize.Ftoa(pv.GoalProgress),
		humanize.FormatFloat("#,###.", pv.GoalShares))
}

// FormatPrices formats the live quotes for Telegram.
func FormatPrices(p dashboard.Prices) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 %s: <b>%s</b>\n", p.ReferenceSymbol, FormatMoney(p.ReferencePrice)))
	b.WriteString(fmt.Sprintf("🟠 %s: <b>%s</b>\n", p.TrackingSymbol, FormatMoney(p.TrackingPrice)))
	if !p.FetchedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Updated: %s\n", p.FetchedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatGoal formats share count, value and goal progress.
func FormatGoal(pv *dashboard.PortfolioView) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📌 IBIT-equivalent shares: <b>%s</b>\n", humanize.Commaf(pv.EquivalentShares)))
	b.WriteString(fmt.Sprintf("Value: %s\n", FormatMoney(pv.CurrentValue)))
	b.WriteString(fmt.Sprintf("%s\n%s\n", ProgressBar(pv.GoalProgress, 20), GoalLine(pv)))
	if pv.Projection != nil {
		b.WriteString(fmt.Sprintf("1y power-law projection: <b>%s</b>\n", FormatMoney(pv.OneYearValue)))
	}
	return b.String()
}

// FormatOptions formats the strategy commentary for every option row.
func FormatOptions(pv *dashboard.PortfolioView) string {
	if len(pv.Options) == 0 && len(pv.Errors) == 0 {
		return "No call options in portfolio.\n"
	}
	var b strings.Builder
	b.WriteString("🧠 <b>Strategy Commentary</b>\n")
	for _, c := range pv.Options {
		b.WriteString("- " + html.EscapeString(OptionLine(c)) + "\n")
	}
	for _, e := range pv.Errors {
		b.WriteString("⚠️ " + html.EscapeString(e) + "\n")
	}
	return b.String()
}

// FormatReport formats the whole dashboard into one Telegram message.
func FormatReport(d *dashboard.Dashboard) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>IBIT Strategy Dashboard</b> | %s\n\n", d.GeneratedAt.Format("2006-01-02")))
	b.WriteString(FormatPrices(d.Prices))
	b.WriteString("\n")

	if d.Model != nil {
		b.WriteString(fmt.Sprintf("Power law: price = e^%.3f · t^%.3f\n\n", d.Model.Intercept, d.Model.Slope))
	} else if d.ModelError != "" {
		b.WriteString("Power law unavailable: " + html.EscapeString(d.ModelError) + "\n\n")
	}

	if d.Portfolio == nil {
		b.WriteString(d.Hint)
		return b.String()
	}
	b.WriteString(FormatGoal(d.Portfolio))
	b.WriteString("\n")
	b.WriteString(FormatOptions(d.Portfolio))
	return b.String()
}
