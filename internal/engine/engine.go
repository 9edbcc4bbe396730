// Package engine wires classification, persistence, analysis and chat into
// the operations the command line exposes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/thrift/internal/budget"
	"github.com/Veraticus/thrift/internal/chat"
	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/service"
	"github.com/Veraticus/thrift/internal/translate"
)

// Engine orchestrates the application's operations for one store.
type Engine struct {
	storage    service.Storage
	classifier Classifier
	translator translate.Translator
	chat       ChatHandler
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// New creates an engine. A nil translator disables translation.
func New(storage service.Storage, classifier Classifier, translator translate.Translator, chat ChatHandler, logger *slog.Logger) *Engine {
	if translator == nil {
		translator = translate.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		storage:    storage,
		classifier: classifier,
		translator: translator,
		chat:       chat,
		logger:     logger.With("component", "engine"),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// WithClock overrides the engine's clock.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// User returns the stored profile, or a default auto-mode profile when the
// user has never been saved.
func (e *Engine) User(ctx context.Context, userID string) (*model.User, error) {
	user, err := e.storage.GetUser(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return &model.User{ID: userID, BudgetMode: model.BudgetModeAuto}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// ValidateRaw rejects records that cannot be classified.
func ValidateRaw(raw model.RawTransaction) error {
	if strings.TrimSpace(raw.Merchant) == "" {
		return fmt.Errorf("%w: merchant is required", common.ErrInvalidInput)
	}
	if raw.Amount == 0 || math.IsNaN(raw.Amount) || math.IsInf(raw.Amount, 0) {
		return fmt.Errorf("%w: amount must be a non-zero number", common.ErrInvalidInput)
	}
	return nil
}

// Ingest validates, classifies and stores one record.
func (e *Engine) Ingest(ctx context.Context, userID string, raw model.RawTransaction) (*model.Transaction, error) {
	if err := ValidateRaw(raw); err != nil {
		return nil, err
	}

	user, err := e.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	txn := e.classify(ctx, user, raw)
	if err := e.storage.SaveTransactions(ctx, []model.Transaction{txn}); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	e.logger.Info("transaction ingested",
		"id", txn.ID,
		"merchant", txn.Merchant,
		"amount", txn.Amount,
		"category", txn.Category,
		"impulse", txn.IsImpulse)
	return &txn, nil
}

// IngestStats summarizes a batch ingestion.
type IngestStats struct {
	Imported int
	Skipped  int
	Invalid  int
}

// IngestBatch classifies and stores records from an ingestion source. Records
// whose external ID is already stored, or repeated within the batch, are skipped.
func (e *Engine) IngestBatch(ctx context.Context, userID string, raws []model.RawTransaction, progress ProgressFunc) (IngestStats, error) {
	var stats IngestStats

	user, err := e.User(ctx, userID)
	if err != nil {
		return stats, err
	}

	seen, err := e.storage.GetExternalIDs(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("failed to load imported IDs: %w", err)
	}

	var batch []model.Transaction
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		switch {
		case raw.ExternalID != "" && seen[raw.ExternalID]:
			stats.Skipped++
		case ValidateRaw(raw) != nil:
			e.logger.Warn("skipping invalid record", "merchant", raw.Merchant, "amount", raw.Amount)
			stats.Invalid++
		default:
			if raw.ExternalID != "" {
				seen[raw.ExternalID] = true
			}
			batch = append(batch, e.classify(ctx, user, raw))
		}

		if progress != nil {
			progress(i+1, len(raws))
		}
	}

	if len(batch) > 0 {
		if err := e.storage.SaveTransactions(ctx, batch); err != nil {
			return stats, fmt.Errorf("failed to save transactions: %w", err)
		}
	}
	stats.Imported = len(batch)

	e.logger.Info("batch ingested", "imported", stats.Imported, "skipped", stats.Skipped, "invalid", stats.Invalid)
	return stats, nil
}

func (e *Engine) classify(ctx context.Context, user *model.User, raw model.RawTransaction) model.Transaction {
	if raw.Date.IsZero() {
		raw.Date = e.now()
	}
	if raw.Source == "" {
		raw.Source = model.SourceManual
	}

	txn := model.Transaction{
		ID:            e.newID(),
		UserID:        user.ID,
		Date:          dayOf(raw.Date),
		Merchant:      strings.TrimSpace(raw.Merchant),
		Amount:        raw.Amount,
		CategoryHint:  strings.TrimSpace(raw.CategoryHint),
		Justification: strings.TrimSpace(raw.Justification),
		ExternalID:    raw.ExternalID,
		Source:        raw.Source,
		CreatedAt:     e.now(),
	}
	txn.ApplyVerdict(e.classifier.Classify(ctx, txn.Raw()))
	e.translateExplanation(ctx, user, &txn)
	return txn
}

func (e *Engine) translateExplanation(ctx context.Context, user *model.User, txn *model.Transaction) {
	txn.ExplanationTranslated = ""
	if user.Language == "" {
		return
	}
	txn.ExplanationTranslated = e.translator.Translate(ctx, []string{txn.Explanation}, user.Language)[0]
}

// Correct applies an explicit user override to a stored verdict.
func (e *Engine) Correct(ctx context.Context, id string, c model.Correction) (*model.Transaction, error) {
	if c.Empty() {
		return nil, fmt.Errorf("%w: nothing to correct", common.ErrInvalidInput)
	}
	if c.Category != nil && strings.TrimSpace(*c.Category) == "" {
		return nil, fmt.Errorf("%w: category cannot be empty", common.ErrInvalidInput)
	}
	if c.Decision != nil && !c.Decision.Valid() {
		return nil, fmt.Errorf("%w: unknown decision label %q", common.ErrInvalidInput, *c.Decision)
	}

	txn, err := e.storage.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	if c.Category != nil {
		txn.Category = strings.TrimSpace(*c.Category)
	}
	if c.IsImpulse != nil {
		txn.IsImpulse = *c.IsImpulse
	}
	if c.Decision != nil {
		txn.Decision = *c.Decision
	}

	if err := e.storage.UpdateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	e.logger.Info("transaction corrected", "id", id, "category", txn.Category, "impulse", txn.IsImpulse, "decision", txn.Decision)
	return txn, nil
}

// Justify records the user's reason for a purchase and re-classifies it.
func (e *Engine) Justify(ctx context.Context, id, justification string) (*model.Transaction, error) {
	if strings.TrimSpace(justification) == "" {
		return nil, fmt.Errorf("%w: justification is required", common.ErrInvalidInput)
	}

	txn, err := e.storage.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	user, err := e.User(ctx, txn.UserID)
	if err != nil {
		return nil, err
	}

	txn.Justification = strings.TrimSpace(justification)
	txn.ApplyVerdict(e.classifier.Reclassify(ctx, *txn))
	e.translateExplanation(ctx, user, txn)

	if err := e.storage.UpdateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	e.logger.Info("transaction justified", "id", id, "decision", txn.Decision)
	return txn, nil
}

// Reclassify re-runs classification over every stored record of a user.
func (e *Engine) Reclassify(ctx context.Context, userID string, progress ProgressFunc) (int, error) {
	user, err := e.User(ctx, userID)
	if err != nil {
		return 0, err
	}
	txns, err := e.storage.GetTransactions(ctx, service.TransactionFilter{UserID: userID})
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions: %w", err)
	}

	changed := 0
	for i := range txns {
		if err := ctx.Err(); err != nil {
			return changed, err
		}

		txn := &txns[i]
		before := txn.Category
		txn.ApplyVerdict(e.classifier.Reclassify(ctx, *txn))
		e.translateExplanation(ctx, user, txn)
		if err := e.storage.UpdateTransaction(ctx, txn); err != nil {
			return changed, fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
		}
		if txn.Category != before {
			changed++
		}

		if progress != nil {
			progress(i+1, len(txns))
		}
	}

	e.logger.Info("reclassified transactions", "total", len(txns), "category_changes", changed)
	return changed, nil
}

// Transactions lists a user's records within an optional period.
func (e *Engine) Transactions(ctx context.Context, userID string, period *model.Period) ([]model.Transaction, error) {
	filter := service.TransactionFilter{UserID: userID}
	if period != nil {
		if err := period.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
		}
		start, end := budget.Bounds(*period)
		filter.StartDate, filter.EndDate = &start, &end
	}

	txns, err := e.storage.GetTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return txns, nil
}

// Analyze computes the budget summary of a period. A non-empty mode
// overrides the user's configured budget mode.
func (e *Engine) Analyze(ctx context.Context, userID string, period model.Period, mode model.BudgetMode) (model.BudgetSummary, error) {
	if err := period.Validate(); err != nil {
		return model.BudgetSummary{}, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}

	user, err := e.User(ctx, userID)
	if err != nil {
		return model.BudgetSummary{}, err
	}

	txns, err := e.storage.GetTransactions(ctx, service.TransactionFilter{UserID: userID})
	if err != nil {
		return model.BudgetSummary{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	settings := budget.SettingsFor(user)
	if mode != "" {
		settings.Mode = mode
	}

	summary, err := budget.Compute(txns, period, settings, e.now())
	if err != nil {
		return model.BudgetSummary{}, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}

	e.logger.Debug("analysis computed",
		"user", userID,
		"timeframe", summary.Timeframe,
		"ceiling", summary.Ceiling,
		"used", summary.Used,
		"source", summary.CeilingSource)
	return summary, nil
}

// Chat answers the latest user message in history.
func (e *Engine) Chat(ctx context.Context, userID string, history []llm.Message) (chat.Reply, error) {
	user, err := e.User(ctx, userID)
	if err != nil {
		return chat.Reply{}, err
	}
	return e.chat.Handle(ctx, user, history)
}

// Goals lists a user's savings goals.
func (e *Engine) Goals(ctx context.Context, userID string) ([]model.SavingsGoal, error) {
	goals, err := e.storage.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
