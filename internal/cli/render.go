package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/thrift/internal/examples"
	"github.com/Veraticus/thrift/internal/goals"
	"github.com/Veraticus/thrift/internal/model"
)

const barWidth = 20

// Money formats an amount with two decimals.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// Bar renders a fixed-width textual progress bar for a share in [0, 1].
func Bar(share float64) string {
	share = max(0, min(1, share))
	filled := int(share*barWidth + 0.5)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

// RenderSummary renders a budget summary with its category breakdown and patterns.
func RenderSummary(s model.BudgetSummary) string {
	var b strings.Builder

	b.WriteString(FormatTitle(fmt.Sprintf("Budget %s to %s", s.Start, s.End)))
	b.WriteString("\n")

	share := 0.0
	if s.Ceiling > 0 {
		share = s.Used / s.Ceiling
	}
	lines := []string{
		fmt.Sprintf("Ceiling:   %s (%s)", Money(s.Ceiling), s.CeilingSource),
		fmt.Sprintf("Used:      %s %s", Money(s.Used), Bar(share)),
		fmt.Sprintf("Remaining: %s", Money(s.Remaining())),
	}
	if s.Income > 0 {
		lines = append(lines, fmt.Sprintf("Income:    %s", Money(s.Income)))
	}
	b.WriteString(RenderBox(ChartIcon+" Overview", strings.Join(lines, "\n")))
	b.WriteString("\n")

	if s.Remaining() < 0 {
		b.WriteString(FormatWarning(fmt.Sprintf("Over budget by %s", Money(-s.Remaining()))))
		b.WriteString("\n")
	}

	if len(s.ByCategory) > 0 {
		t := newTable("Category", "Amount", "Share")
		for _, c := range s.ByCategory {
			pct := 0.0
			if s.Used > 0 {
				pct = c.Amount / s.Used * 100
			}
			t.Row(c.Category, Money(c.Amount), fmt.Sprintf("%.1f%%", pct))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	} else {
		b.WriteString(SubtleStyle.Render("No spending in this period."))
		b.WriteString("\n")
	}

	for _, p := range s.Patterns {
		b.WriteString(FormatInfo(p))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderTransactions renders records as a table.
func RenderTransactions(txns []model.Transaction) string {
	if len(txns) == 0 {
		return SubtleStyle.Render("No transactions.") + "\n"
	}

	t := newTable("Date", "Merchant", "Amount", "Category", "Decision", "Impulse", "ID")
	for _, txn := range txns {
		impulse := ""
		if txn.IsImpulse {
			impulse = "yes"
		}
		t.Row(txn.DateKey(), txn.Merchant, Money(txn.Amount), txn.Category, string(txn.Decision), impulse, shortID(txn.ID))
	}
	return t.String() + "\n"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RenderTransaction renders one record with its explanation.
func RenderTransaction(txn *model.Transaction) string {
	lines := []string{
		fmt.Sprintf("Date:      %s", txn.DateKey()),
		fmt.Sprintf("Amount:    %s", Money(txn.Amount)),
		fmt.Sprintf("Category:  %s", txn.Category),
		fmt.Sprintf("Decision:  %s", txn.Decision),
		fmt.Sprintf("Impulse:   %t", txn.IsImpulse),
	}
	if txn.Justification != "" {
		lines = append(lines, fmt.Sprintf("Reason:    %s", txn.Justification))
	}
	lines = append(lines, "", txn.Explanation)
	if txn.ExplanationTranslated != "" {
		lines = append(lines, SubtleStyle.Render(txn.ExplanationTranslated))
	}
	lines = append(lines, SubtleStyle.Render("id "+txn.ID))

	return RenderBox(txn.Merchant, strings.Join(lines, "\n")) + "\n"
}

// RenderGoals renders each goal with its progress and rules.
func RenderGoals(list []model.SavingsGoal, now time.Time) string {
	if len(list) == 0 {
		return SubtleStyle.Render("No savings goals yet. Try: thrift chat \"I want to save 1200 for a trip\"") + "\n"
	}

	var b strings.Builder
	for i := range list {
		g := &list[i]
		title := GoalIcon + " " + g.Title
		if g.IsComplete() {
			title += " " + SuccessIcon
		}

		lines := []string{
			fmt.Sprintf("%s %s of %s (%.0f%%)", Bar(g.Progress()), Money(g.SavedAmount), Money(g.TargetAmount), g.Progress()*100),
			fmt.Sprintf("Target date: %s (%d months left)", g.TargetDate.Format(model.DateLayout), goals.MonthsRemaining(now, g.TargetDate)),
		}
		for n, rule := range g.Rules {
			lines = append(lines, fmt.Sprintf("%d. %s", n+1, rule))
		}
		b.WriteString(RenderBox(title, strings.Join(lines, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHints renders category suggestions for a merchant.
func RenderHints(merchant string, hints []examples.Hint) string {
	if len(hints) == 0 {
		return SubtleStyle.Render(fmt.Sprintf("No suggestions for %q.", merchant)) + "\n"
	}
	t := newTable("Category", "Score")
	for _, h := range hints {
		t.Row(h.Category, fmt.Sprintf("%.2f", h.Score))
	}
	return t.String() + "\n"
}

// FormatIngest summarizes an ingestion run.
func FormatIngest(imported, skipped, invalid int) string {
	msg := fmt.Sprintf("Imported %d transactions", imported)
	if skipped > 0 {
		msg += fmt.Sprintf(", skipped %d already stored", skipped)
	}
	if invalid > 0 {
		return FormatWarning(msg + fmt.Sprintf(", rejected %d invalid", invalid))
	}
	return FormatSuccess(msg)
}
