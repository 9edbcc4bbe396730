package llm

import (
	"context"
	"time"
)

// Role identifies the author of a chat message.
type Role string

// Message roles understood by every provider.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a role-tagged conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client defines the interface for text-completion providers.
type Client interface {
	// Complete returns the model's reply to a single system and user instruction.
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
	// Chat returns the model's reply to a full conversation.
	Chat(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// Config holds configuration for the completion layer.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	CachePath  string
	MaxRetries int
	RetryDelay time.Duration
	CacheTTL   time.Duration
	RateLimit  int
	MaxTokens  int
}

// splitSystem separates leading system messages from the rest of a conversation.
func splitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
