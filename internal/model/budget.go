package model

import (
	"errors"
	"fmt"
	"time"
)

// PeriodKind selects the shape of an analysis period.
type PeriodKind string

const (
	// PeriodMonth is a single calendar month.
	PeriodMonth PeriodKind = "month"
	// PeriodYear is the calendar year of the reference month.
	PeriodYear PeriodKind = "year"
	// PeriodCustom is an explicit inclusive date range.
	PeriodCustom PeriodKind = "custom"
)

// ErrInvalidPeriod is returned when a period cannot be used.
var ErrInvalidPeriod = errors.New("invalid period")

// Period describes the window an analysis is computed over.
type Period struct {
	Kind  PeriodKind
	Month string // Reference month, YYYY-MM (month and year kinds)
	Start string // YYYY-MM-DD, custom kind only
	End   string // YYYY-MM-DD, custom kind only
}

// MonthPeriod returns the period covering the given YYYY-MM month.
func MonthPeriod(month string) Period {
	return Period{Kind: PeriodMonth, Month: month}
}

// YearPeriod returns the year period anchored at the given YYYY-MM month.
func YearPeriod(month string) Period {
	return Period{Kind: PeriodYear, Month: month}
}

// CustomPeriod returns the inclusive range between two YYYY-MM-DD dates.
func CustomPeriod(start, end string) Period {
	return Period{Kind: PeriodCustom, Start: start, End: end}
}

// Validate checks that the period is complete and well ordered.
func (p Period) Validate() error {
	switch p.Kind {
	case PeriodMonth, PeriodYear:
		if _, err := time.Parse("2006-01", p.Month); err != nil {
			return fmt.Errorf("%w: reference month %q must be YYYY-MM", ErrInvalidPeriod, p.Month)
		}
	case PeriodCustom:
		start, err := time.Parse(DateLayout, p.Start)
		if err != nil {
			return fmt.Errorf("%w: start date %q must be YYYY-MM-DD", ErrInvalidPeriod, p.Start)
		}
		end, err := time.Parse(DateLayout, p.End)
		if err != nil {
			return fmt.Errorf("%w: end date %q must be YYYY-MM-DD", ErrInvalidPeriod, p.End)
		}
		if end.Before(start) {
			return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidPeriod, p.End, p.Start)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPeriod, p.Kind)
	}
	return nil
}

// CeilingSource records which rule produced a budget ceiling.
type CeilingSource string

// Ceiling sources, in the order auto mode tries them.
const (
	CeilingScopedSalary  CeilingSource = "scoped-salary"
	CeilingSalaryHistory CeilingSource = "salary-history"
	CeilingBaseline      CeilingSource = "baseline"
	CeilingManual        CeilingSource = "manual"
)

// CategoryTotal is the summed expense amount of one category.
type CategoryTotal struct {
	Category string
	Amount   float64
}

// BudgetSummary is the derived analysis of one period. It is never persisted.
type BudgetSummary struct {
	Timeframe     PeriodKind
	Start         string
	End           string
	CeilingSource CeilingSource
	ByCategory    []CategoryTotal
	Patterns      []string
	Ceiling       float64
	Used          float64
	Income        float64
	Months        int
}

// Remaining returns the unspent part of the ceiling, which may be negative.
func (s *BudgetSummary) Remaining() float64 {
	return s.Ceiling - s.Used
}
