// Package income separates income-like transactions from expenses.
package income

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/thrift/internal/model"
)

// Kind is the income classification of a transaction.
type Kind string

const (
	// KindExpense is anything not recognized as income.
	KindExpense Kind = "expense"
	// KindSalary is income that counts toward the salary-derived budget.
	KindSalary Kind = "salary"
	// KindIncome is any other inflow.
	KindIncome Kind = "income"
)

// Pattern is a named regular expression that marks a transaction as income.
type Pattern struct {
	Name     string
	Kind     Kind
	Regex    string
	Priority int // Higher priority patterns are checked first
}

type compiledPattern struct {
	re *regexp.Regexp
	Pattern
}

// Detector matches transactions against income patterns in priority order.
type Detector struct {
	patterns []compiledPattern
}

// NewDetector compiles patterns case-insensitively.
func NewDetector(patterns []Pattern) (*Detector, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		expr := p.Regex
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}
		compiled = append(compiled, compiledPattern{Pattern: p, re: re})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return &Detector{patterns: compiled}, nil
}

// Default returns a detector over DefaultPatterns.
func Default() *Detector {
	d, err := NewDetector(DefaultPatterns())
	if err != nil {
		panic(err)
	}
	return d
}

// Classify reports whether txn is salary, other income, or an expense.
// Explicit category tags take precedence over pattern matches.
func (d *Detector) Classify(txn *model.Transaction) Kind {
	switch strings.ToLower(strings.TrimSpace(txn.Category)) {
	case model.CategorySalary:
		return KindSalary
	case model.CategoryOtherIncome:
		return KindIncome
	}

	text := strings.Join([]string{txn.Merchant, txn.Category, txn.Justification}, " ")
	if p, ok := d.match(text); ok {
		return p.Kind
	}
	return KindExpense
}

// IsIncome reports whether txn is any kind of income.
func (d *Detector) IsIncome(txn *model.Transaction) bool {
	return d.Classify(txn) != KindExpense
}

// IsSalary reports whether txn is salary.
func (d *Detector) IsSalary(txn *model.Transaction) bool {
	return d.Classify(txn) == KindSalary
}

func (d *Detector) match(text string) (Pattern, bool) {
	for _, p := range d.patterns {
		if p.re.MatchString(text) {
			return p.Pattern, true
		}
	}
	return Pattern{}, false
}
