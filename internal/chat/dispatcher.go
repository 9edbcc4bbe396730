package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/goals"
	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/service"
)

// FallbackReply answers general conversation when the assistant is unavailable.
const FallbackReply = "I can't answer that right now. You can still create goals, record deposits and manage goal rules."

const chatTemperature = 0.7

// Reply is the outcome of one chat turn.
type Reply struct {
	Intent Intent
	Text   string
	Goals  []model.SavingsGoal
}

// Dispatcher applies routed intents to a user's goals.
type Dispatcher struct {
	store  service.Storage
	synth  *goals.Synthesizer
	client llm.Client
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(store service.Storage, synth *goals.Synthesizer, client llm.Client, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:  store,
		synth:  synth,
		client: client,
		logger: logger.With("component", "chat"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithClock overrides the dispatcher's clock.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Handle routes the latest user message in history and applies it. Only
// storage failures are returned as errors.
func (d *Dispatcher) Handle(ctx context.Context, user *model.User, history []llm.Message) (Reply, error) {
	utterance := lastUserMessage(history)
	if strings.TrimSpace(utterance) == "" {
		return Reply{}, fmt.Errorf("%w: no user message to answer", common.ErrInvalidInput)
	}

	existing, err := d.store.ListGoals(ctx, user.ID)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to list goals: %w", err)
	}

	intent := Route(utterance, existing)
	d.logger.Debug("routed chat message", "user", user.ID, "intent", intent.Kind())

	text, err := d.apply(ctx, user, history, intent, existing)
	if err != nil {
		return Reply{}, err
	}

	current, err := d.store.ListGoals(ctx, user.ID)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to list goals: %w", err)
	}
	return Reply{Intent: intent, Text: text, Goals: current}, nil
}

func (d *Dispatcher) apply(ctx context.Context, user *model.User, history []llm.Message, intent Intent, existing []model.SavingsGoal) (string, error) {
	switch in := intent.(type) {
	case DepositIntent:
		return d.mutate(ctx, existing, in.GoalID, func(g *model.SavingsGoal, now time.Time) (string, error) {
			if err := goals.Deposit(g, in.Amount, now); err != nil {
				return "", err
			}
			return fmt.Sprintf("Added %s to %s. Saved so far: %s of %s.",
				money(in.Amount), g.Title, money(g.SavedAmount), money(g.TargetAmount)), nil
		})

	case RuleAddIntent:
		return d.mutate(ctx, existing, in.GoalID, func(g *model.SavingsGoal, now time.Time) (string, error) {
			if err := goals.AddRule(g, in.Rule, now); err != nil {
				return "", err
			}
			return fmt.Sprintf("Added a rule to %s: %s", g.Title, in.Rule), nil
		})

	case RuleRemoveIntent:
		return d.mutate(ctx, existing, in.GoalID, func(g *model.SavingsGoal, now time.Time) (string, error) {
			var removed string
			var err error
			if in.Position > 0 {
				removed, err = goals.RemoveRuleAt(g, in.Position, now)
			} else {
				removed, err = goals.RemoveRuleMatching(g, in.Text, now)
			}
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Removed a rule from %s: %s", g.Title, removed), nil
		})

	case DeleteIntent:
		g := find(existing, in.GoalID)
		if err := d.store.DeleteGoal(ctx, in.GoalID); err != nil {
			return "", fmt.Errorf("failed to delete goal: %w", err)
		}
		d.logger.Info("goal deleted", "goal", in.GoalID)
		return fmt.Sprintf("Deleted the goal %s.", g.Title), nil

	case CompleteIntent:
		return d.mutate(ctx, existing, in.GoalID, func(g *model.SavingsGoal, now time.Time) (string, error) {
			goals.Complete(g, now)
			return fmt.Sprintf("Congratulations, %s is complete: %s saved.", g.Title, money(g.SavedAmount)), nil
		})

	case UpdateIntent:
		changes := in.Changes
		if changes.Empty() {
			changes = d.extractChanges(ctx, in.Utterance)
		}
		if changes.Empty() {
			return fmt.Sprintf("Tell me what to change about %s: a new amount, date or title.", find(existing, in.GoalID).Title), nil
		}
		return d.mutate(ctx, existing, in.GoalID, func(g *model.SavingsGoal, now time.Time) (string, error) {
			if err := goals.Update(g, changes, now); err != nil {
				return "", err
			}
			return fmt.Sprintf("Updated %s: %s by %s. %s.",
				g.Title, money(g.TargetAmount), g.TargetDate.Format(model.DateLayout), g.Rules[0]), nil
		})

	case CreateGoalIntent:
		return d.create(ctx, user, in.Utterance)

	default:
		return d.converse(ctx, user, history, existing), nil
	}
}

// mutate loads the goal, applies fn and saves the result. Rejected mutations
// become reply text rather than errors.
func (d *Dispatcher) mutate(ctx context.Context, existing []model.SavingsGoal, id string, fn func(*model.SavingsGoal, time.Time) (string, error)) (string, error) {
	g := find(existing, id)
	if g == nil {
		return "", fmt.Errorf("%w: goal %s", common.ErrNotFound, id)
	}

	text, err := fn(g, d.now())
	if err != nil {
		d.logger.Info("goal change rejected", "goal", id, "error", err)
		return rejection(g, err), nil
	}

	if err := d.store.SaveGoal(ctx, g); err != nil {
		return "", fmt.Errorf("failed to save goal: %w", err)
	}
	d.logger.Info("goal updated", "goal", id, "saved", g.SavedAmount, "rules", len(g.Rules))
	return text, nil
}

func rejection(g *model.SavingsGoal, err error) string {
	switch {
	case errors.Is(err, goals.ErrProtectedRule):
		return fmt.Sprintf("The monthly contribution rule of %s can't be removed.", g.Title)
	case errors.Is(err, goals.ErrRuleNotFound):
		return fmt.Sprintf("I couldn't find that rule in %s.", g.Title)
	case errors.Is(err, goals.ErrEmptyRule):
		return "The rule text is empty."
	case errors.Is(err, goals.ErrInvalidAmount):
		return "The amount must be greater than zero."
	default:
		return fmt.Sprintf("I couldn't change %s.", g.Title)
	}
}

func (d *Dispatcher) create(ctx context.Context, user *model.User, utterance string) (string, error) {
	draft := d.synth.Synthesize(ctx, utterance)
	g := goals.New(draft, d.newID(), user.ID, d.now())

	if err := d.store.SaveGoal(ctx, &g); err != nil {
		return "", fmt.Errorf("failed to save goal: %w", err)
	}
	d.logger.Info("goal created", "goal", g.ID, "title", g.Title, "amount", g.TargetAmount)

	return fmt.Sprintf("Created the goal %s: save %s by %s. %s.",
		g.Title, money(g.TargetAmount), g.TargetDate.Format(model.DateLayout), g.Rules[0]), nil
}

// extractChanges asks the synthesizer for an amount or date when the
// heuristics found none. Titles are only changed when asked for explicitly.
func (d *Dispatcher) extractChanges(ctx context.Context, utterance string) goals.Changes {
	var c goals.Changes
	ex, ok := d.synth.Extract(ctx, utterance)
	if !ok {
		return c
	}
	if ex.Amount > 0 {
		c.Amount = &ex.Amount
	}
	if !ex.Date.IsZero() {
		c.Date = &ex.Date
	}
	return c
}

func (d *Dispatcher) converse(ctx context.Context, user *model.User, history []llm.Message, existing []model.SavingsGoal) string {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: SystemInstruction(user, existing)})
	for _, m := range history {
		if m.Role != llm.RoleSystem {
			messages = append(messages, m)
		}
	}

	reply, err := d.client.Chat(ctx, messages, chatTemperature)
	if err != nil || strings.TrimSpace(reply) == "" {
		d.logger.Warn("assistant reply failed, using fallback", "error", err)
		return FallbackReply
	}
	return strings.TrimSpace(reply)
}

// SystemInstruction describes the user's income and goals to the assistant.
func SystemInstruction(user *model.User, existing []model.SavingsGoal) string {
	var b strings.Builder
	b.WriteString("You are a friendly personal finance assistant. Keep answers short and practical.\n")
	fmt.Fprintf(&b, "The user's declared monthly income is %s.\n", money(user.BaselineIncome))

	if len(existing) == 0 {
		b.WriteString("The user has no savings goals yet.")
		return b.String()
	}

	b.WriteString("Current savings goals:")
	for _, g := range existing {
		fmt.Fprintf(&b, "\n- %s: %s of %s saved, target date %s",
			g.Title, money(g.SavedAmount), money(g.TargetAmount), g.TargetDate.Format(model.DateLayout))
	}
	return b.String()
}

func lastUserMessage(history []llm.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == llm.RoleUser {
			return history[i].Content
		}
	}
	return ""
}

func find(existing []model.SavingsGoal, id string) *model.SavingsGoal {
	for i := range existing {
		if existing[i].ID == id {
			return &existing[i]
		}
	}
	return nil
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
