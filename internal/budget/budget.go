// Package budget scopes a transaction history to a period and derives the
// period's budget ceiling, spend and category breakdown.
package budget

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/thrift/internal/income"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/nudge"
)

// trailingMonths is how far back salary history is averaged.
const trailingMonths = 12

// Settings are the user preferences that shape the ceiling.
type Settings struct {
	Mode           model.BudgetMode
	FlexibleBudget float64 // Manual monthly allowance
	BaselineIncome float64 // Declared monthly income
}

// SettingsFor extracts budget settings from a user profile.
func SettingsFor(u *model.User) Settings {
	return Settings{
		Mode:           u.BudgetMode,
		FlexibleBudget: u.FlexibleBudget,
		BaselineIncome: u.BaselineIncome,
	}
}

var detector = income.Default()

// Compute builds the budget summary of period over txns.
func Compute(txns []model.Transaction, period model.Period, settings Settings, now time.Time) (model.BudgetSummary, error) {
	if err := period.Validate(); err != nil {
		return model.BudgetSummary{}, err
	}

	start, end := Bounds(period)
	months := MonthsIn(period)
	scoped := Scope(txns, period)
	incomes, expenses := Partition(scoped)

	summary := model.BudgetSummary{
		Timeframe:  period.Kind,
		Start:      start.Format(model.DateLayout),
		End:        end.Format(model.DateLayout),
		Months:     months,
		ByCategory: ByCategory(expenses),
	}

	for i := range incomes {
		summary.Income += math.Abs(incomes[i].Amount)
	}
	for i := range expenses {
		summary.Used += math.Abs(expenses[i].Amount)
	}

	summary.Ceiling, summary.CeilingSource = ceiling(txns, incomes, period, settings, months)

	summary.Patterns = nudge.Detect(expenses, nudge.Input{
		Timeframe: period.Kind,
		Start:     start,
		End:       budgetEnd(period, start, end, months),
		Now:       now,
		Ceiling:   summary.Ceiling,
		Used:      summary.Used,
	})

	return summary, nil
}

// Scope returns the transactions whose calendar day falls in period.
// Dates are compared as YYYY-MM-DD strings.
func Scope(txns []model.Transaction, period model.Period) []model.Transaction {
	var out []model.Transaction
	for i := range txns {
		key := txns[i].DateKey()
		var in bool
		switch period.Kind {
		case model.PeriodMonth:
			in = strings.HasPrefix(key, period.Month)
		case model.PeriodYear:
			in = strings.HasPrefix(key, yearOf(period.Month))
		case model.PeriodCustom:
			in = key >= period.Start && key <= period.End
		}
		if in {
			out = append(out, txns[i])
		}
	}
	return out
}

// Partition splits txns into income-like and expense-like records.
func Partition(txns []model.Transaction) (incomes, expenses []model.Transaction) {
	for i := range txns {
		if detector.IsIncome(&txns[i]) {
			incomes = append(incomes, txns[i])
		} else {
			expenses = append(expenses, txns[i])
		}
	}
	return incomes, expenses
}

// ByCategory sums expense magnitudes per category, largest first.
// Equal totals keep first-seen order.
func ByCategory(expenses []model.Transaction) []model.CategoryTotal {
	index := make(map[string]int)
	totals := []model.CategoryTotal{}

	for i := range expenses {
		category := strings.TrimSpace(expenses[i].Category)
		if category == "" {
			category = model.CategoryUnknown
		}
		pos, ok := index[category]
		if !ok {
			pos = len(totals)
			index[category] = pos
			totals = append(totals, model.CategoryTotal{Category: category})
		}
		totals[pos].Amount += math.Abs(expenses[i].Amount)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Amount > totals[j].Amount
	})
	return totals
}

// MonthsIn returns the number of months the ceiling is multiplied by.
// Year periods count the months elapsed up to the reference month.
func MonthsIn(period model.Period) int {
	switch period.Kind {
	case model.PeriodYear:
		ref, err := time.Parse("2006-01", period.Month)
		if err != nil {
			return 1
		}
		return int(ref.Month())
	case model.PeriodCustom:
		start, err1 := time.Parse(model.DateLayout, period.Start)
		end, err2 := time.Parse(model.DateLayout, period.End)
		if err1 != nil || err2 != nil {
			return 1
		}
		return max(monthIndex(end)-monthIndex(start)+1, 1)
	default:
		return 1
	}
}

// Bounds returns the first and last calendar day of period.
func Bounds(period model.Period) (time.Time, time.Time) {
	switch period.Kind {
	case model.PeriodCustom:
		start, _ := time.Parse(model.DateLayout, period.Start)
		end, _ := time.Parse(model.DateLayout, period.End)
		return start, end
	case model.PeriodYear:
		ref, _ := time.Parse("2006-01", period.Month)
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, -1)
	default:
		ref, _ := time.Parse("2006-01", period.Month)
		return ref, ref.AddDate(0, 1, -1)
	}
}

// budgetEnd is the last day the ceiling covers. A year period's ceiling spans
// only the months up to the reference month.
func budgetEnd(period model.Period, start, end time.Time, months int) time.Time {
	if period.Kind != model.PeriodYear {
		return end
	}
	return start.AddDate(0, months, -1)
}

// ceiling picks the budget ceiling and reports which rule produced it.
func ceiling(all, scopedIncome []model.Transaction, period model.Period, s Settings, months int) (float64, model.CeilingSource) {
	if s.Mode == model.BudgetModeManual {
		return s.FlexibleBudget * float64(months), model.CeilingManual
	}

	var scopedSalary float64
	for i := range scopedIncome {
		if detector.IsSalary(&scopedIncome[i]) {
			scopedSalary += math.Abs(scopedIncome[i].Amount)
		}
	}
	if scopedSalary > 0 {
		return scopedSalary, model.CeilingScopedSalary
	}

	if avg := TrailingSalary(all, anchorMonth(period)); avg > 0 {
		return spendable(avg * float64(months)), model.CeilingSalaryHistory
	}

	return spendable(s.BaselineIncome * float64(months)), model.CeilingBaseline
}

// spendable is the 60% share of income available for flexible spending.
func spendable(income float64) float64 {
	return income * 60 / 100
}

// TrailingSalary averages monthly salary over the trailingMonths ending at
// anchor, counting only months that had salary. It returns 0 with no history.
func TrailingSalary(txns []model.Transaction, anchor time.Time) float64 {
	last := monthIndex(anchor)
	first := last - trailingMonths + 1

	perMonth := make(map[int]float64)
	for i := range txns {
		m := monthIndex(txns[i].Date)
		if m < first || m > last || !detector.IsSalary(&txns[i]) {
			continue
		}
		perMonth[m] += math.Abs(txns[i].Amount)
	}

	var total float64
	var counted int
	for _, v := range perMonth {
		if v > 0 {
			total += v
			counted++
		}
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// anchorMonth is the period's end month for custom ranges, otherwise the reference month.
func anchorMonth(period model.Period) time.Time {
	if period.Kind == model.PeriodCustom {
		end, _ := time.Parse(model.DateLayout, period.End)
		return end
	}
	ref, _ := time.Parse("2006-01", period.Month)
	return ref
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func yearOf(month string) string {
	if len(month) < 4 {
		return month
	}
	return month[:4]
}
