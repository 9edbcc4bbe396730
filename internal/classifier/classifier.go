// Package classifier assigns a category and an impulse verdict to transactions.
package classifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/thrift/internal/examples"
	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/model"
)

const (
	// Temperature is kept low so repeated classifications agree.
	Temperature = 0.1
	fewShotSize = 5
)

// Engine classifies transactions with a completion client, falling back to
// keyword rules when the client fails.
type Engine struct {
	client   llm.Client
	examples *examples.Provider
	logger   *slog.Logger
}

// New creates a classification engine. A nil provider uses the embedded seed corpus.
func New(client llm.Client, provider *examples.Provider, logger *slog.Logger) *Engine {
	if provider == nil {
		provider = examples.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:   client,
		examples: provider,
		logger:   logger.With("component", "classifier"),
	}
}

// Classify returns a verdict for raw. It never fails: a completion error
// yields the keyword fallback and an unusable reply yields defaults.
func (e *Engine) Classify(ctx context.Context, raw model.RawTransaction) model.Verdict {
	prompt := buildPrompt(raw, e.examples.FewShot(fewShotSize), e.examples.TypicalAmounts())

	reply, err := e.client.Complete(ctx, systemPrompt, prompt, Temperature)
	if err != nil {
		e.logger.Warn("classification fell back to keyword rules",
			"merchant", raw.Merchant,
			"error", err)
		return Fallback(raw.Merchant, raw.Amount)
	}

	return e.parse(raw, reply)
}

// Reclassify re-runs classification for a stored transaction, typically after
// the user submits a justification.
func (e *Engine) Reclassify(ctx context.Context, txn model.Transaction) model.Verdict {
	return e.Classify(ctx, txn.Raw())
}

// reply is the loosely typed shape of a model answer.
type reply struct {
	Category    *string         `json:"category"`
	IsImpulse   json.RawMessage `json:"isImpulse"`
	Decision    *string         `json:"decisionLabel"`
	Explanation *string         `json:"decisionExplanation"`
}

// parse turns model output into a verdict, defaulting anything missing.
func (e *Engine) parse(raw model.RawTransaction, text string) model.Verdict {
	verdict := model.Verdict{
		Category: model.CategoryUnknown,
		Decision: model.DecisionUseful,
	}

	obj, ok := llm.ExtractObject(text)
	if !ok {
		e.logger.Debug("classification reply had no JSON object, using defaults", "merchant", raw.Merchant)
		verdict.Explanation = explain(raw.Merchant, false)
		return verdict
	}

	var r reply
	if err := json.Unmarshal([]byte(obj), &r); err != nil {
		e.logger.Debug("classification reply did not decode, using defaults", "merchant", raw.Merchant, "error", err)
		verdict.Explanation = explain(raw.Merchant, false)
		return verdict
	}

	if r.Category != nil {
		if c := strings.ToLower(strings.TrimSpace(*r.Category)); c != "" {
			verdict.Category = c
		}
	}
	verdict.IsImpulse = parseBool(r.IsImpulse)
	if r.Decision != nil {
		if label, ok := model.ParseDecisionLabel(*r.Decision); ok {
			verdict.Decision = label
		}
	}
	if r.Explanation != nil && strings.TrimSpace(*r.Explanation) != "" {
		verdict.Explanation = strings.TrimSpace(*r.Explanation)
	} else {
		verdict.Explanation = explain(raw.Merchant, verdict.IsImpulse)
	}

	return verdict
}

// parseBool accepts JSON booleans and their string forms; anything else is false.
func parseBool(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, _ := strconv.ParseBool(strings.TrimSpace(s))
		return v
	}
	return false
}
