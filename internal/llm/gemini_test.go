package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/thrift/internal/common"
)

func TestNewGeminiClient(t *testing.T) {
	_, err := newGeminiClient(context.Background(), Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	client, err := newGeminiClient(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", client.(*geminiClient).model)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{name: "openai", provider: "openai"},
		{name: "anthropic", provider: "Anthropic"},
		{name: "gemini", provider: "gemini"},
		{name: "none", provider: "none"},
		{name: "empty means none", provider: ""},
		{name: "unknown", provider: "watson", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), Config{Provider: tt.provider, APIKey: "k"})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Complete(context.Background(), "s", "u", 0)
	assert.ErrorIs(t, err, common.ErrUnavailable)

	_, err = Unavailable{}.Chat(context.Background(), nil, 0)
	assert.ErrorIs(t, err, common.ErrUnavailable)
}
