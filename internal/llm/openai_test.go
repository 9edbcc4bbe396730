package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/thrift/internal/common"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  Config{APIKey: "test-key"},
			wantErr: false,
		},
		{
			name:    "missing API key",
			config:  Config{APIKey: ""},
			wantErr: true,
		},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:    "test-key",
				Model:     "gpt-4",
				MaxTokens: 200,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newOpenAIClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrMissingConfig)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func openAIReply(content string) string {
	return fmt.Sprintf(`{"id":"chatcmpl-1","model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":%q}}]}`, content)
}

func TestOpenAIClient_Complete(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		want       string
		statusCode int
		wantErr    error
		retryable  bool
	}{
		{
			name:       "successful completion",
			body:       openAIReply(`{"category":"groceries"}`),
			statusCode: http.StatusOK,
			want:       `{"category":"groceries"}`,
		},
		{
			name:       "no choices",
			body:       `{"id":"x","choices":[]}`,
			statusCode: http.StatusOK,
			wantErr:    common.ErrEmptyResponse,
		},
		{
			name:       "rate limited",
			body:       `{"error":"slow down"}`,
			statusCode: http.StatusTooManyRequests,
			wantErr:    common.ErrRateLimit,
		},
		{
			name:       "server error is retryable",
			body:       `{"error":"boom"}`,
			statusCode: http.StatusInternalServerError,
			retryable:  true,
		},
		{
			name:       "bad request is not retryable",
			body:       `{"error":"bad"}`,
			statusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got openAIRequest
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL})
			require.NoError(t, err)

			text, err := client.Complete(context.Background(), "be terse", "hello", 0.1)

			assert.Equal(t, "be terse", got.Messages[0].Content)
			assert.Equal(t, RoleSystem, got.Messages[0].Role)
			assert.Equal(t, "hello", got.Messages[1].Content)
			assert.InDelta(t, 0.1, got.Temperature, 0.0001)

			if tt.statusCode == http.StatusOK && tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, text)
				return
			}

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.statusCode >= http.StatusBadRequest && tt.wantErr == nil {
				var retryErr *common.RetryableError
				require.True(t, errors.As(err, &retryErr))
				assert.Equal(t, tt.retryable, retryErr.Retryable)
			}
		})
	}
}

func TestOpenAIClient_ChatKeepsRoles(t *testing.T) {
	var got openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(openAIReply("sure")))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	text, err := client.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "context"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "help me save"},
	}, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "sure", text)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, RoleAssistant, got.Messages[2].Role)
}
