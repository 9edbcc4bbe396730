package goals

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/thrift/internal/textnorm"
)

// DefaultHorizonDays is how far out a goal lands when no usable future date is given.
const DefaultHorizonDays = 180

// Day truncates t to its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ResolveTargetDate keeps target when it is strictly after today and
// otherwise returns today plus DefaultHorizonDays.
func ResolveTargetDate(today, target time.Time) time.Time {
	today = Day(today)
	if !target.IsZero() && Day(target).After(today) {
		return Day(target)
	}
	return today.AddDate(0, 0, DefaultHorizonDays)
}

// MonthsRemaining counts whole calendar months from today to target. A month
// is added when today's day-of-month is past the target's. The result is at least 1.
func MonthsRemaining(today, target time.Time) int {
	months := (target.Year()-today.Year())*12 + int(target.Month()) - int(today.Month())
	if today.Day() > target.Day() {
		months++
	}
	return max(months, 1)
}

// MonthlyContribution divides amount evenly over the months to target, rounded to cents.
func MonthlyContribution(amount float64, today, target time.Time) float64 {
	months := decimal.NewFromInt(int64(MonthsRemaining(today, target)))
	return decimal.NewFromFloat(amount).DivRound(months, 2).InexactFloat64()
}

// ContributionRule renders the canonical first rule of every goal.
func ContributionRule(monthly float64) string {
	return fmt.Sprintf("Transfer %s per month into this goal", decimal.NewFromFloat(monthly).StringFixed(2))
}

var (
	monthlyWords = []string{
		"monthly", "per month", "a month", "each month", "every month", "/month", "/mo",
		"mensual", "al mes", "por mes", "cada mes",
	}
	transferWords = []string{
		"transfer", "save", "deposit", "put ", "set aside", "move", "contribute",
		"transfiere", "transferir", "ahorra", "deposita", "aparta", "guarda",
	}
)

// IsTransferRule reports whether a rule already describes a monthly transfer.
func IsTransferRule(rule string) bool {
	text := textnorm.Normalize(rule)
	return textnorm.ContainsAny(text, monthlyWords...) && textnorm.ContainsAny(text, transferWords...)
}

// AssembleRules strips monthly-transfer rules and prepends the canonical one.
func AssembleRules(monthly float64, proposed []string) []string {
	rules := []string{ContributionRule(monthly)}
	for _, r := range proposed {
		if r == "" || IsTransferRule(r) {
			continue
		}
		rules = append(rules, r)
	}
	return rules
}
