package translate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/thrift/internal/llm"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTranslate(t *testing.T) {
	inputs := []string{"Save money", "Cook at home"}

	tests := []struct {
		name   string
		client llm.Client
		want   []string
	}{
		{
			name:   "translated",
			client: llm.NewMockClient(`["Ahorrar dinero", "Cocinar en casa"]`),
			want:   []string{"Ahorrar dinero", "Cocinar en casa"},
		},
		{
			name:   "wrapped in prose",
			client: llm.NewMockClient("Here:\n```json\n[\"Ahorrar dinero\", \"Cocinar en casa\"]\n```"),
			want:   []string{"Ahorrar dinero", "Cocinar en casa"},
		},
		{
			name:   "completion failure returns originals",
			client: llm.NewFailingMockClient(errors.New("quota")),
			want:   inputs,
		},
		{
			name:   "length mismatch returns originals",
			client: llm.NewMockClient(`["Ahorrar dinero"]`),
			want:   inputs,
		},
		{
			name:   "not an array returns originals",
			client: llm.NewMockClient(`{"text":"nope"}`),
			want:   inputs,
		},
		{
			name:   "blank entries keep originals",
			client: llm.NewMockClient(`["Ahorrar dinero", "  "]`),
			want:   []string{"Ahorrar dinero", "Cook at home"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.client, "", discard())
			got := tr.Translate(context.Background(), inputs, "Spanish")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_SkipsWithoutLanguage(t *testing.T) {
	mock := llm.NewMockClient(`["x"]`)
	tr := New(mock, "", discard())

	assert.Equal(t, []string{"hello"}, tr.Translate(context.Background(), []string{"hello"}, ""))
	assert.Empty(t, tr.Translate(context.Background(), nil, "Spanish"))
	assert.Empty(t, mock.Calls())
}

func TestToDefault(t *testing.T) {
	mock := llm.NewMockClient(`["I bought it for work"]`)
	tr := New(mock, "English", discard())

	got := tr.ToDefault(context.Background(), "Lo compré para el trabajo")
	assert.Equal(t, "I bought it for work", got)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].User, "Target language: English")
}

func TestNoop(t *testing.T) {
	var tr Translator = Noop{}
	assert.Equal(t, []string{"a"}, tr.Translate(context.Background(), []string{"a"}, "fr"))
	assert.Equal(t, "b", tr.ToDefault(context.Background(), "b"))
}
