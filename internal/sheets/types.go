package sheets

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/thrift/internal/model"
)

// CategoryRow represents a single row of the category breakdown.
type CategoryRow struct {
	Category string
	Amount   decimal.Decimal
	Share    decimal.Decimal // Percentage of the used amount
}

// TransactionRow represents a single row of the transaction detail section.
type TransactionRow struct {
	Date        time.Time
	Merchant    string
	Category    string
	Decision    string
	Explanation string
	Amount      decimal.Decimal
	Impulse     bool
}

// GoalRow represents a single row of the savings goal section.
type GoalRow struct {
	TargetDate time.Time
	Title      string
	Rule       string
	Target     decimal.Decimal
	Saved      decimal.Decimal
}

// Report holds everything written to the spreadsheet for one period.
type Report struct {
	GeneratedAt   time.Time
	Start         string
	End           string
	UserName      string
	CeilingSource string
	Patterns      []string
	Categories    []CategoryRow
	Transactions  []TransactionRow
	Goals         []GoalRow
	Ceiling       decimal.Decimal
	Used          decimal.Decimal
	Remaining     decimal.Decimal
	Income        decimal.Decimal
	Months        int
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// BuildReport converts a budget summary and its records into report rows.
// Transactions are listed newest first.
func BuildReport(user *model.User, summary model.BudgetSummary, txns []model.Transaction, goals []model.SavingsGoal, now time.Time) Report {
	report := Report{
		GeneratedAt:   now,
		Start:         summary.Start,
		End:           summary.End,
		CeilingSource: string(summary.CeilingSource),
		Patterns:      summary.Patterns,
		Ceiling:       money(summary.Ceiling),
		Used:          money(summary.Used),
		Remaining:     money(summary.Remaining()),
		Income:        money(summary.Income),
		Months:        summary.Months,
	}
	if user != nil {
		report.UserName = user.Name
	}

	used := money(summary.Used)
	for _, ct := range summary.ByCategory {
		row := CategoryRow{Category: ct.Category, Amount: money(ct.Amount)}
		if used.IsPositive() {
			row.Share = row.Amount.Div(used).Mul(decimal.NewFromInt(100)).Round(1)
		}
		report.Categories = append(report.Categories, row)
	}

	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	for _, t := range sorted {
		report.Transactions = append(report.Transactions, TransactionRow{
			Date:        t.Date,
			Merchant:    t.Merchant,
			Category:    t.Category,
			Decision:    string(t.Decision),
			Explanation: t.Explanation,
			Amount:      money(t.Amount),
			Impulse:     t.IsImpulse,
		})
	}

	for _, g := range goals {
		row := GoalRow{
			Title:      g.Title,
			Target:     money(g.TargetAmount),
			Saved:      money(g.SavedAmount),
			TargetDate: g.TargetDate,
		}
		if len(g.Rules) > 0 {
			row.Rule = g.Rules[0]
		}
		report.Goals = append(report.Goals, row)
	}

	return report
}
