// Package model defines the core domain models used throughout the application.
package model

import "strings"

// DecisionLabel is the binary verdict on whether a purchase was worth it.
type DecisionLabel string

const (
	// DecisionUseful marks a purchase as necessary or worthwhile.
	DecisionUseful DecisionLabel = "useful"
	// DecisionUnnecessary marks a purchase as avoidable.
	DecisionUnnecessary DecisionLabel = "unnecessary"
)

// Valid reports whether the label is one of the known values.
func (d DecisionLabel) Valid() bool {
	return d == DecisionUseful || d == DecisionUnnecessary
}

// ParseDecisionLabel converts free text into a label, reporting whether it was recognized.
func ParseDecisionLabel(s string) (DecisionLabel, bool) {
	label := DecisionLabel(strings.ToLower(strings.TrimSpace(s)))
	if label.Valid() {
		return label, true
	}
	return DecisionUseful, false
}

// Verdict is the output of classifying a single transaction.
type Verdict struct {
	Category    string
	Decision    DecisionLabel
	Explanation string
	IsImpulse   bool
}

// Correction is an explicit user override of a stored verdict.
// Nil fields are left untouched.
type Correction struct {
	Category  *string
	IsImpulse *bool
	Decision  *DecisionLabel
}

// Empty reports whether the correction changes nothing.
func (c Correction) Empty() bool {
	return c.Category == nil && c.IsImpulse == nil && c.Decision == nil
}
