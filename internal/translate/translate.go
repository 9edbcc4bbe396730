// Package translate renders user-facing text into a second language using the
// completion capability. Every failure degrades to the untranslated input.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/thrift/internal/llm"
)

// Translator converts text between languages.
type Translator interface {
	// Translate returns texts rendered in lang, in the same order.
	Translate(ctx context.Context, texts []string, lang string) []string
	// ToDefault renders text into the deployment's default language.
	ToDefault(ctx context.Context, text string) string
}

const translateTemperature = 0.2

const systemPrompt = `You are a translation engine for a personal finance app.
Translate every string in the given JSON array into the requested language.
Keep numbers, currency amounts and proper names unchanged.
Respond with ONLY a JSON array of strings, same length and order as the input.`

// LLMTranslator implements Translator over a completion client.
type LLMTranslator struct {
	client      llm.Client
	logger      *slog.Logger
	defaultLang string
}

// New creates a translator whose ToDefault target is defaultLang.
func New(client llm.Client, defaultLang string, logger *slog.Logger) *LLMTranslator {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLang == "" {
		defaultLang = "English"
	}
	return &LLMTranslator{
		client:      client,
		logger:      logger.With("component", "translate"),
		defaultLang: defaultLang,
	}
}

// Translate returns texts in lang, or the originals when anything goes wrong.
func (t *LLMTranslator) Translate(ctx context.Context, texts []string, lang string) []string {
	if len(texts) == 0 || strings.TrimSpace(lang) == "" {
		return texts
	}

	payload, err := json.Marshal(texts)
	if err != nil {
		return texts
	}

	reply, err := t.client.Complete(ctx, systemPrompt,
		fmt.Sprintf("Target language: %s\nStrings: %s", lang, payload), translateTemperature)
	if err != nil {
		t.logger.Warn("translation failed", "lang", lang, "error", err)
		return texts
	}

	raw, ok := llm.ExtractArray(reply)
	if !ok {
		t.logger.Warn("translation reply had no array", "lang", lang)
		return texts
	}

	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || len(out) != len(texts) {
		t.logger.Warn("translation reply did not match input", "lang", lang, "want", len(texts), "got", len(out))
		return texts
	}

	for i := range out {
		if strings.TrimSpace(out[i]) == "" {
			out[i] = texts[i]
		}
	}
	return out
}

// ToDefault translates a single string into the default language.
func (t *LLMTranslator) ToDefault(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	return t.Translate(ctx, []string{text}, t.defaultLang)[0]
}

// Noop is a Translator that returns its input unchanged.
type Noop struct{}

// Translate returns texts unchanged.
func (Noop) Translate(_ context.Context, texts []string, _ string) []string { return texts }

// ToDefault returns text unchanged.
func (Noop) ToDefault(_ context.Context, text string) string { return text }
