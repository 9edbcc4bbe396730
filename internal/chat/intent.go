// Package chat routes free-text chat messages to goal operations.
package chat

import (
	"github.com/Veraticus/thrift/internal/goals"
)

// Kind names an intent variant.
type Kind string

// Intent kinds, in routing order.
const (
	KindDeposit    Kind = "deposit"
	KindRuleAdd    Kind = "rule-add"
	KindRuleRemove Kind = "rule-remove"
	KindDelete     Kind = "delete"
	KindComplete   Kind = "complete"
	KindUpdate     Kind = "update"
	KindCreate     Kind = "create"
	KindGeneral    Kind = "general"
)

// Intent is the routed meaning of one utterance.
type Intent interface {
	Kind() Kind
}

// DepositIntent adds money to a goal.
type DepositIntent struct {
	GoalID string
	Amount float64
}

// RuleAddIntent appends a rule to a goal.
type RuleAddIntent struct {
	GoalID string
	Rule   string
}

// RuleRemoveIntent removes a rule by 1-based position or, when Position is
// zero, by matching Text.
type RuleRemoveIntent struct {
	GoalID   string
	Text     string
	Position int
}

// DeleteIntent removes a goal.
type DeleteIntent struct {
	GoalID string
}

// CompleteIntent marks a goal fully funded.
type CompleteIntent struct {
	GoalID string
}

// UpdateIntent edits a goal. Empty Changes are resolved by the dispatcher
// from Utterance.
type UpdateIntent struct {
	GoalID    string
	Utterance string
	Changes   goals.Changes
}

// CreateGoalIntent synthesizes a new goal from Utterance.
type CreateGoalIntent struct {
	Utterance string
}

// GeneralIntent forwards the conversation to the assistant.
type GeneralIntent struct{}

func (DepositIntent) Kind() Kind    { return KindDeposit }
func (RuleAddIntent) Kind() Kind    { return KindRuleAdd }
func (RuleRemoveIntent) Kind() Kind { return KindRuleRemove }
func (DeleteIntent) Kind() Kind     { return KindDelete }
func (CompleteIntent) Kind() Kind   { return KindComplete }
func (UpdateIntent) Kind() Kind     { return KindUpdate }
func (CreateGoalIntent) Kind() Kind { return KindCreate }
func (GeneralIntent) Kind() Kind    { return KindGeneral }
