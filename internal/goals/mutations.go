package goals

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/textnorm"
)

// Mutation errors.
var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrEmptyRule     = errors.New("rule text is empty")
	ErrRuleNotFound  = errors.New("rule not found")
	ErrProtectedRule = errors.New("the monthly contribution rule cannot be removed")
)

// New creates a goal from a draft.
func New(draft model.GoalDraft, id, userID string, now time.Time) model.SavingsGoal {
	return model.SavingsGoal{
		ID:              id,
		UserID:          userID,
		Title:           draft.Title,
		TitleTranslated: draft.TitleTranslated,
		TargetAmount:    draft.TargetAmount,
		TargetDate:      draft.TargetDate,
		Rules:           append([]string(nil), draft.Rules...),
		RulesTranslated: append([]string(nil), draft.RulesTranslated...),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Deposit adds amount to the goal's saved total.
func Deposit(g *model.SavingsGoal, amount float64, now time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %.2f", ErrInvalidAmount, amount)
	}
	g.SavedAmount += amount
	g.UpdatedAt = now
	return nil
}

// AddRule appends a behavioral rule.
func AddRule(g *model.SavingsGoal, rule string, now time.Time) error {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return ErrEmptyRule
	}
	g.Rules = append(g.Rules, rule)
	g.RulesTranslated = nil
	g.UpdatedAt = now
	return nil
}

// RemoveRuleAt removes the rule at a 1-based position. Position 1 holds the
// contribution rule and is protected.
func RemoveRuleAt(g *model.SavingsGoal, position int, now time.Time) (string, error) {
	if position == 1 {
		return "", ErrProtectedRule
	}
	if position < 1 || position > len(g.Rules) {
		return "", fmt.Errorf("%w: no rule %d", ErrRuleNotFound, position)
	}
	return removeRule(g, position-1, now), nil
}

// RemoveRuleMatching removes the first non-contribution rule containing text,
// compared accent- and case-insensitively.
func RemoveRuleMatching(g *model.SavingsGoal, text string, now time.Time) (string, error) {
	needle := textnorm.Normalize(text)
	if needle == "" {
		return "", ErrEmptyRule
	}
	for i := 1; i < len(g.Rules); i++ {
		if strings.Contains(textnorm.Normalize(g.Rules[i]), needle) {
			return removeRule(g, i, now), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrRuleNotFound, text)
}

func removeRule(g *model.SavingsGoal, idx int, now time.Time) string {
	removed := g.Rules[idx]
	g.Rules = append(g.Rules[:idx:idx], g.Rules[idx+1:]...)
	g.RulesTranslated = nil
	g.UpdatedAt = now
	return removed
}

// Complete marks the goal as fully funded.
func Complete(g *model.SavingsGoal, now time.Time) {
	g.SavedAmount = g.TargetAmount
	g.UpdatedAt = now
}

// Changes lists the goal fields an update touches. Nil fields are kept.
type Changes struct {
	Title  *string
	Amount *float64
	Date   *time.Time
}

// Empty reports whether the update changes nothing.
func (c Changes) Empty() bool {
	return c.Title == nil && c.Amount == nil && c.Date == nil
}

// Update applies changes and recomputes the contribution rule. A date that is
// not in the future is replaced the same way as at creation.
func Update(g *model.SavingsGoal, c Changes, now time.Time) error {
	if c.Amount != nil && *c.Amount <= 0 {
		return fmt.Errorf("%w: %.2f", ErrInvalidAmount, *c.Amount)
	}

	if c.Title != nil && strings.TrimSpace(*c.Title) != "" {
		g.Title = strings.TrimSpace(*c.Title)
		g.TitleTranslated = ""
	}
	if c.Amount != nil {
		g.TargetAmount = *c.Amount
	}
	if c.Date != nil {
		g.TargetDate = ResolveTargetDate(now, *c.Date)
	}

	Recompute(g, now)
	g.UpdatedAt = now
	return nil
}

// Recompute rewrites rules[0] from the current target amount and date.
func Recompute(g *model.SavingsGoal, today time.Time) {
	rule := ContributionRule(MonthlyContribution(g.TargetAmount, Day(today), g.TargetDate))
	if len(g.Rules) == 0 {
		g.Rules = []string{rule}
	} else {
		g.Rules[0] = rule
	}
	g.RulesTranslated = nil
}
