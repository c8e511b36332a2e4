package assessment

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"riskToleranceBot/internal/finance"
)

// FormatMoney renders a dollar amount rounded to cents, e.g. "$10,600.00".
func FormatMoney(v float64) string {
	cents := decimal.NewFromFloat(v).Round(2).Shift(2).IntPart()
	return money.New(cents, money.USD).Display()
}

func pct(v float64) string { return fmt.Sprintf("%.2f%%", v*100) }

func ratio(r finance.Ratio) string {
	if !r.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", r.Value)
}

func pctRatio(r finance.Ratio) string {
	if !r.Valid {
		return "n/a"
	}
	return pct(r.Value)
}

// FormatProfile renders the tier, its description and both allocations.
func FormatProfile(p *Profile) string {
	var b strings.Builder
	if p.Score > 0 {
		fmt.Fprintf(&b, "Your total score: %d\n", p.Score)
	}
	fmt.Fprintf(&b, "Risk tolerance: *%s*\n\n", p.Tier)
	b.WriteString(p.Description)
	b.WriteString("\n\n*Recommended asset allocation*\n")
	labels, values := p.Macro.Labels(), p.Macro.Values()
	for i := range labels {
		fmt.Fprintf(&b, "- %s: %d%%\n", labels[i], values[i])
	}
	fmt.Fprintf(&b, "\n*Allocation for %s portfolio*\n", p.Tier)
	for _, h := range p.Instruments {
		fmt.Fprintf(&b, "- %s: %d%% (%s)\n", h.Symbol, h.Percent, h.Description)
	}
	if p.Horizon != "" {
		fmt.Fprintf(&b, "\nBacktest window: %s to %s (horizon: %s)\n",
			p.Window.Start.Format("2006-01-02"), p.Window.End.Format("2006-01-02"), p.Horizon)
	}
	return b.String()
}

// FormatReport renders the key metrics of a run.
func FormatReport(r *Report) string {
	m := r.Metrics
	var b strings.Builder
	fmt.Fprintf(&b, "*Simulated %s portfolio*\n", r.Profile.Tier)
	fmt.Fprintf(&b, "%s to %s\n\n", r.Profile.Window.Start.Format("2006-01-02"), r.Profile.Window.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "Initial investment: %s\n", FormatMoney(m.InitialInvestment))
	fmt.Fprintf(&b, "Final value: %s\n", FormatMoney(m.FinalValue))
	fmt.Fprintf(&b, "Annualized return (portfolio): %s\n", pct(m.AnnualizedReturn))
	if r.Benchmark != nil {
		fmt.Fprintf(&b, "Annualized return (S&P 500): %s\n", pct(r.Benchmark.AnnualizedReturn))
	} else {
		b.WriteString("Annualized return (S&P 500): unavailable\n")
	}
	fmt.Fprintf(&b, "Volatility: %s\n", pctRatio(m.Volatility))
	fmt.Fprintf(&b, "Sharpe ratio: %s\n", ratio(m.SharpeRatio))
	fmt.Fprintf(&b, "Portfolio beta: %s\n", ratio(m.Beta))
	fmt.Fprintf(&b, "Treynor ratio: %s\n", ratio(m.TreynorRatio))
	fmt.Fprintf(&b, "Max drawdown: %s\n", pct(m.MaxDrawdown))
	return b.String()
}
