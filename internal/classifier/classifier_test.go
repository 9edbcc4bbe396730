package classifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/model"
)

func newTestEngine(client llm.Client) *Engine {
	return New(client, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func rawTxn(merchant string, amount float64) model.RawTransaction {
	return model.RawTransaction{
		Date:     time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Merchant: merchant,
		Amount:   amount,
	}
}

func TestClassify_ParsesReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  model.Verdict
	}{
		{
			name:  "clean json",
			reply: `{"category":"dining","isImpulse":true,"decisionLabel":"unnecessary","decisionExplanation":"Late night delivery."}`,
			want:  model.Verdict{Category: "dining", IsImpulse: true, Decision: model.DecisionUnnecessary, Explanation: "Late night delivery."},
		},
		{
			name:  "wrapped in prose and fences",
			reply: "Here is my answer:\n```json\n{\"category\": \"Pet Care\", \"isImpulse\": false, \"decisionLabel\": \"useful\", \"decisionExplanation\": \"Food for the dog.\"}\n```\nAnything else?",
			want:  model.Verdict{Category: "pet care", Decision: model.DecisionUseful, Explanation: "Food for the dog."},
		},
		{
			name:  "string boolean",
			reply: `{"category":"shopping","isImpulse":"true","decisionLabel":"UNNECESSARY","decisionExplanation":"Sale splurge."}`,
			want:  model.Verdict{Category: "shopping", IsImpulse: true, Decision: model.DecisionUnnecessary, Explanation: "Sale splurge."},
		},
		{
			name:  "first object wins",
			reply: `{"category":"groceries","isImpulse":false,"decisionLabel":"useful","decisionExplanation":"Food."} {"category":"travel"}`,
			want:  model.Verdict{Category: "groceries", Decision: model.DecisionUseful, Explanation: "Food."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(llm.NewMockClient(tt.reply))
			got := e.Classify(context.Background(), rawTxn("Some Merchant", 20))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_DefaultsOnUnusableReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "no json", reply: "I am not sure how to classify that."},
		{name: "wrong types", reply: `{"category": 42, "decisionLabel": ["x"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(llm.NewMockClient(tt.reply))
			got := e.Classify(context.Background(), rawTxn("Zara", 500))

			assert.Equal(t, model.CategoryUnknown, got.Category)
			assert.False(t, got.IsImpulse)
			assert.Equal(t, model.DecisionUseful, got.Decision)
			assert.NotEmpty(t, got.Explanation)
		})
	}
}

func TestClassify_MissingFieldsGetDefaults(t *testing.T) {
	e := newTestEngine(llm.NewMockClient(`{"isImpulse": true, "decisionLabel": "perhaps"}`))
	got := e.Classify(context.Background(), rawTxn("Steam", 60))

	assert.Equal(t, model.CategoryUnknown, got.Category)
	assert.True(t, got.IsImpulse)
	assert.Equal(t, model.DecisionUseful, got.Decision)
	assert.Contains(t, got.Explanation, "Steam")
}

func TestClassify_FallbackOnCompletionError(t *testing.T) {
	e := newTestEngine(llm.NewFailingMockClient(errors.New("quota exceeded")))

	got := e.Classify(context.Background(), rawTxn("Zara", 89.50))
	assert.Equal(t, Fallback("Zara", 89.50), got)
	assert.Equal(t, "shopping", got.Category)
	assert.True(t, got.IsImpulse)
}

func TestClassify_Prompt(t *testing.T) {
	mock := llm.NewMockClient(`{"category":"dining","isImpulse":false,"decisionLabel":"useful","decisionExplanation":"ok"}`)
	e := newTestEngine(mock)

	raw := rawTxn("Blue Bottle", 7.5)
	raw.CategoryHint = "coffee"
	raw.Justification = "Meeting a client"
	e.Classify(context.Background(), raw)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.InDelta(t, Temperature, calls[0].Temperature, 0.0001)
	assert.Equal(t, systemPrompt, calls[0].System)

	prompt := calls[0].User
	assert.Contains(t, prompt, "groceries, dining, shopping")
	assert.Contains(t, prompt, "coin a new concise category")
	assert.Contains(t, prompt, "Merchant: Blue Bottle")
	assert.Contains(t, prompt, "Amount: 7.50")
	assert.Contains(t, prompt, "User category hint: coffee")
	assert.Contains(t, prompt, "User justification: Meeting a client")
	assert.Contains(t, prompt, "Typical amounts per category")
	assert.Equal(t, 5, countLines(prompt, "- merchant="))
}

func TestReclassify_UsesJustification(t *testing.T) {
	mock := llm.NewMockClient(`{"category":"shopping","isImpulse":false,"decisionLabel":"useful","decisionExplanation":"Needed for work."}`)
	e := newTestEngine(mock)

	txn := model.Transaction{Merchant: "Zara", Amount: 120, Justification: "Suit for an interview"}
	got := e.Reclassify(context.Background(), txn)

	assert.False(t, got.IsImpulse)
	assert.Contains(t, mock.Calls()[0].User, "Suit for an interview")
}

func countLines(text, prefix string) int {
	n := 0
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			line := text[start:i]
			if len(line) >= len(prefix) && line[:len(prefix)] == prefix {
				n++
			}
			start = i + 1
		}
	}
	return n
}
