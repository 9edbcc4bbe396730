// Package nudge turns a period's expenses into short behavioral observations.
package nudge

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/thrift/internal/model"
)

// MaxPatterns is the most observations Detect returns.
const MaxPatterns = 3

// NoSpending is the single message returned for an empty expense set.
const NoSpending = "No spending recorded yet for this period."

// Input carries the period context for detection. A zero Ceiling disables the
// budget pace check.
type Input struct {
	Start     time.Time
	End       time.Time
	Now       time.Time
	Timeframe model.PeriodKind
	Ceiling   float64
	Used      float64
}

// detector returns a message and whether it fired.
type detector func(expenses []model.Transaction, in Input) (string, bool)

// detectors run in this order; earlier entries win when more than MaxPatterns fire.
var detectors = []detector{
	topCategory,
	budgetPace,
	halfTrend,
	impulseRate,
	recurringMerchant,
	costliestWeekday,
}

// Detect returns at most MaxPatterns observations about expenses.
func Detect(expenses []model.Transaction, in Input) []string {
	if len(expenses) == 0 {
		return []string{NoSpending}
	}

	out := make([]string, 0, MaxPatterns)
	for _, d := range detectors {
		if msg, ok := d(expenses, in); ok {
			out = append(out, msg)
		}
		if len(out) == MaxPatterns {
			break
		}
	}
	return out
}

func topCategory(expenses []model.Transaction, _ Input) (string, bool) {
	groups := groupBy(expenses, func(t *model.Transaction) string {
		if c := strings.TrimSpace(t.Category); c != "" {
			return c
		}
		return model.CategoryUnknown
	})
	if len(groups) == 0 {
		return "", false
	}

	best := groups[0]
	var total float64
	for _, g := range groups {
		total += g.total
		if g.total > best.total {
			best = g
		}
	}

	return fmt.Sprintf("Your top spending category is %s at %s, %d%% of what you spent.",
		best.key, money(best.total), percent(best.total, total)), true
}

func budgetPace(_ []model.Transaction, in Input) (string, bool) {
	if in.Ceiling <= 0 {
		return "", false
	}

	totalDays := daysInclusive(in.Start, in.End)
	elapsed := min(daysInclusive(in.Start, in.Now), totalDays)
	share := float64(elapsed) / float64(totalDays)
	expected := in.Ceiling * share

	switch {
	case in.Used > 1.1*expected:
		return fmt.Sprintf("You are spending faster than planned: at this pace you will reach %s against a budget of %s.",
			money(in.Used/share), money(in.Ceiling)), true
	case in.Used < 0.8*expected:
		return fmt.Sprintf("Good pace: you have spent %s, below the %s expected by now.",
			money(in.Used), money(expected)), true
	default:
		return "", false
	}
}

func halfTrend(expenses []model.Transaction, in Input) (string, bool) {
	totalDays := daysInclusive(in.Start, in.End)
	mid := day(in.Start).AddDate(0, 0, totalDays/2)

	var first, second float64
	for i := range expenses {
		amount := math.Abs(expenses[i].Amount)
		if day(expenses[i].Date).Before(mid) {
			first += amount
		} else {
			second += amount
		}
	}

	switch {
	case first > 0 && second > 1.2*first:
		return fmt.Sprintf("Spending is rising: %s in the second half of the period versus %s in the first.",
			money(second), money(first)), true
	case second > 0 && first > 1.2*second:
		return fmt.Sprintf("Spending is easing off: %s in the second half of the period versus %s in the first.",
			money(second), money(first)), true
	default:
		return "", false
	}
}

func impulseRate(expenses []model.Transaction, _ Input) (string, bool) {
	impulses := 0
	for i := range expenses {
		if expenses[i].IsImpulse {
			impulses++
		}
	}
	if impulses == 0 {
		return "", false
	}

	return fmt.Sprintf("%d%% of your purchases were impulse buys (%d of %d).",
		percent(float64(impulses), float64(len(expenses))), impulses, len(expenses)), true
}

func recurringMerchant(expenses []model.Transaction, _ Input) (string, bool) {
	groups := groupBy(expenses, func(t *model.Transaction) string {
		return strings.ToLower(strings.TrimSpace(t.Merchant))
	})

	var candidates []group
	for _, g := range groups {
		if g.count < 3 {
			continue
		}
		avg := g.total / float64(g.count)
		if avg <= 0 || (g.max-g.min)/avg > 0.3 {
			continue
		}
		candidates = append(candidates, g)
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].total > candidates[j].total
	})
	top := candidates[0]

	return fmt.Sprintf("%s looks like a recurring charge: %d payments averaging %s.",
		top.label, top.count, money(top.total/float64(top.count))), true
}

func costliestWeekday(expenses []model.Transaction, _ Input) (string, bool) {
	groups := groupBy(expenses, func(t *model.Transaction) string {
		return t.Date.Weekday().String()
	})
	if len(groups) == 0 {
		return "", false
	}

	best := groups[0]
	for _, g := range groups[1:] {
		if g.total > best.total {
			best = g
		}
	}

	return fmt.Sprintf("%s is your most expensive day: %s in total, %s per purchase on average.",
		best.key, money(best.total), money(best.total/float64(best.count))), true
}

// group accumulates absolute amounts for one key.
type group struct {
	key   string
	label string // First original spelling seen for the key
	count int
	total float64
	min   float64
	max   float64
}

// groupBy groups expenses by key, preserving first-seen order.
func groupBy(expenses []model.Transaction, key func(*model.Transaction) string) []group {
	index := make(map[string]int)
	var groups []group

	for i := range expenses {
		t := &expenses[i]
		k := key(t)
		amount := math.Abs(t.Amount)

		pos, ok := index[k]
		if !ok {
			index[k] = len(groups)
			groups = append(groups, group{key: k, label: strings.TrimSpace(t.Merchant), min: amount, max: amount})
			pos = len(groups) - 1
		}

		g := &groups[pos]
		g.count++
		g.total += amount
		g.min = min(g.min, amount)
		g.max = max(g.max, amount)
	}
	return groups
}

// day truncates t to its calendar day in its own location.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysInclusive counts calendar days from start to end, at least 1.
func daysInclusive(start, end time.Time) int {
	n := int(day(end).Sub(day(start)).Hours()/24) + 1
	return max(n, 1)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func percent(part, whole float64) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}
