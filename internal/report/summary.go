package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/amirphl/pantheon/internal/backtest"
	"github.com/amirphl/pantheon/internal/strategy"
)

// MaxTradeLines caps the trades listed under a summary.
const MaxTradeLines = 10

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(16)

	gainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)
)

func line(label, value string) string {
	return labelStyle.Render(label) + value
}

func returnStyle(pct float64) lipgloss.Style {
	if pct < 0 {
		return lossStyle
	}
	return gainStyle
}

// RenderSummary draws the performance summary of a run with its last trades.
func RenderSummary(res backtest.Result) string {
	s := res.Summary
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Performance Summary: %s (%s)", res.Symbol, res.Strategy)))
	b.WriteString("\n")

	if !s.Completed {
		b.WriteString(warnStyle.Render("Not enough data points. No trades were executed."))
		return boxStyle.Render(b.String())
	}

	lines := []string{
		line("Initial Value", "$"+Money(s.InitialValue)),
		line("Final Value", "$"+Money(s.FinalValue)),
		line("Total Return", returnStyle(s.TotalReturnPct).Render(fmt.Sprintf("%.2f%%", s.TotalReturnPct))),
		line("Max Drawdown", fmt.Sprintf("%.2f%%", s.MaxDrawdownPct)),
		line("Total Trades", fmt.Sprintf("%d (Buys: %d, Sells: %d)", s.BuyCount+s.SellCount, s.BuyCount, s.SellCount)),
		line("Executed", fmt.Sprintf("%d", s.Executed)),
		line("Days", fmt.Sprintf("%d", s.Days)),
	}
	b.WriteString(strings.Join(lines, "\n"))

	if len(res.Trades) > 0 {
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render(fmt.Sprintf("Trade Log (last %d)", min(MaxTradeLines, len(res.Trades)))))
		trades := res.Trades
		if len(trades) > MaxTradeLines {
			trades = trades[len(trades)-MaxTradeLines:]
		}
		for _, t := range trades {
			style := gainStyle
			if t.Action == strategy.Sell {
				style = lossStyle
			}
			b.WriteString(fmt.Sprintf("\n%s: %s %d at $%s",
				t.Time.Format(time.DateOnly), style.Render(t.Action.String()), t.Shares, Money(t.Price)))
		}
	}

	return boxStyle.Render(b.String())
}

// RenderSweep draws one row per sweep run, in spec order.
func RenderSweep(results []backtest.SweepResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Parameter Sweep"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%-16s %8s %12s %9s %6s %6s", "Strategy", "Risk", "Final", "Return", "Buys", "Sells"))

	for _, r := range results {
		b.WriteString("\n")
		if r.Err != nil {
			b.WriteString(fmt.Sprintf("%-16s %8.4f ", r.Spec.Strategy, r.Spec.MaxRisk))
			b.WriteString(warnStyle.Render(r.Err.Error()))
			continue
		}
		s := r.Result.Summary
		ret := returnStyle(s.TotalReturnPct).Render(fmt.Sprintf("%8.2f%%", s.TotalReturnPct))
		b.WriteString(fmt.Sprintf("%-16s %8.4f %12s %s %6d %6d",
			r.Spec.Strategy, r.Spec.MaxRisk, Money(s.FinalValue), ret, s.BuyCount, s.SellCount))
	}
	return boxStyle.Render(b.String())
}
