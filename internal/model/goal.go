package model

import "time"

// SavingsGoal is a savings target with the behavioral rules that support it.
// Rules[0] is always the monthly contribution rule.
type SavingsGoal struct {
	TargetDate      time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ID              string
	UserID          string
	Title           string
	TitleTranslated string
	Rules           []string
	RulesTranslated []string
	TargetAmount    float64
	SavedAmount     float64
}

// Remaining returns how much is left to reach the target, never below zero.
func (g *SavingsGoal) Remaining() float64 {
	if g.SavedAmount >= g.TargetAmount {
		return 0
	}
	return g.TargetAmount - g.SavedAmount
}

// Progress returns the saved share of the target in the range [0, 1].
func (g *SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := g.SavedAmount / g.TargetAmount
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// IsComplete reports whether the saved amount has reached the target.
func (g *SavingsGoal) IsComplete() bool {
	return g.TargetAmount > 0 && g.SavedAmount >= g.TargetAmount
}

// GoalDraft is a synthesized goal that has not been persisted yet.
type GoalDraft struct {
	TargetDate          time.Time
	Title               string
	TitleTranslated     string
	Rules               []string
	RulesTranslated     []string
	TargetAmount        float64
	MonthlyContribution float64
}
