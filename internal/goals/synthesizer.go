// Package goals turns savings intentions into goals with a deterministic
// monthly contribution and applies goal mutations.
package goals

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/translate"
)

// Defaults used when nothing usable can be extracted.
const (
	DefaultTitle  = "new goal"
	DefaultAmount = 1000
)

// DefaultRules are the generic rules attached to a default goal.
var DefaultRules = []string{
	"Review your spending once a week",
	"Skip one impulse purchase every week",
	"Put any unexpected income toward this goal",
}

const extractTemperature = 0.2

const systemPrompt = `You help people turn savings wishes into concrete goals.
From the user's message extract the goal and respond with ONLY a JSON object:
  "title": a short goal title,
  "targetAmount": the amount to save as a number,
  "targetDate": the deadline as YYYY-MM-DD,
  "rules": two to four short, practical habits that help reach the goal.
Do not include any text before or after the JSON.`

// Extraction holds the fields a completion produced. Zero values mean "not found".
type Extraction struct {
	Date   time.Time
	Title  string
	Rules  []string
	Amount float64
}

// Synthesizer builds goal drafts from free text.
type Synthesizer struct {
	client     llm.Client
	translator translate.Translator
	logger     *slog.Logger
	now        func() time.Time
	language   string
}

// NewSynthesizer creates a synthesizer. An empty language disables translation.
func NewSynthesizer(client llm.Client, translator translate.Translator, language string, logger *slog.Logger) *Synthesizer {
	if translator == nil {
		translator = translate.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		client:     client,
		translator: translator,
		language:   language,
		logger:     logger.With("component", "goals"),
		now:        time.Now,
	}
}

// WithClock overrides the synthesizer's notion of today.
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	s.now = now
	return s
}

// Today returns the current calendar day.
func (s *Synthesizer) Today() time.Time {
	return Day(s.now())
}

// Synthesize turns an utterance into a goal draft. It never fails: when the
// completion is unavailable or unusable the default goal is used.
func (s *Synthesizer) Synthesize(ctx context.Context, utterance string) model.GoalDraft {
	ex, ok := s.Extract(ctx, utterance)
	if !ok {
		ex = Extraction{Title: DefaultTitle, Amount: DefaultAmount, Rules: DefaultRules}
	}
	if ex.Title == "" {
		ex.Title = DefaultTitle
	}
	if ex.Amount <= 0 {
		ex.Amount = DefaultAmount
	}

	draft := Finalize(ex, s.Today())

	if s.language != "" {
		texts := append([]string{draft.Title}, draft.Rules...)
		translated := s.translator.Translate(ctx, texts, s.language)
		draft.TitleTranslated = translated[0]
		draft.RulesTranslated = translated[1:]
	}

	s.logger.Info("goal synthesized",
		"title", draft.Title,
		"amount", draft.TargetAmount,
		"target_date", draft.TargetDate.Format(model.DateLayout),
		"monthly", draft.MonthlyContribution)

	return draft
}

// Finalize applies the deterministic post-processing to an extraction.
func Finalize(ex Extraction, today time.Time) model.GoalDraft {
	target := ResolveTargetDate(today, ex.Date)
	monthly := MonthlyContribution(ex.Amount, Day(today), target)

	return model.GoalDraft{
		Title:               ex.Title,
		TargetAmount:        ex.Amount,
		TargetDate:          target,
		MonthlyContribution: monthly,
		Rules:               AssembleRules(monthly, ex.Rules),
	}
}

// Extract asks the completion client for goal fields. It reports false when
// the call fails or the reply holds no JSON object.
func (s *Synthesizer) Extract(ctx context.Context, utterance string) (Extraction, bool) {
	prompt := fmt.Sprintf("Today is %s.\nMessage: %s", s.Today().Format(model.DateLayout), utterance)

	reply, err := s.client.Complete(ctx, systemPrompt, prompt, extractTemperature)
	if err != nil {
		s.logger.Warn("goal extraction failed, using defaults", "error", err)
		return Extraction{}, false
	}

	obj, ok := llm.ExtractObject(reply)
	if !ok {
		s.logger.Warn("goal extraction reply had no JSON object")
		return Extraction{}, false
	}

	var r struct {
		Title  string          `json:"title"`
		Amount json.RawMessage `json:"targetAmount"`
		Date   string          `json:"targetDate"`
		Rules  []any           `json:"rules"`
	}
	if err := json.Unmarshal([]byte(obj), &r); err != nil {
		s.logger.Warn("goal extraction reply did not decode", "error", err)
		return Extraction{}, false
	}

	ex := Extraction{
		Title:  strings.TrimSpace(r.Title),
		Amount: parseAmount(r.Amount),
	}
	if d, err := time.Parse(model.DateLayout, strings.TrimSpace(r.Date)); err == nil {
		ex.Date = d
	}
	for _, rule := range r.Rules {
		if text, ok := rule.(string); ok && strings.TrimSpace(text) != "" {
			ex.Rules = append(ex.Rules, strings.TrimSpace(text))
		}
	}
	return ex, true
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// parseAmount accepts a JSON number or a string such as "$1,200".
func parseAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(s, ""), 64)
	if err != nil {
		return 0
	}
	return f
}
