package llm

import (
	"context"
	"fmt"
	"strings"
)

// NewClient creates a raw provider client based on the provided configuration.
// The "none" provider yields a client whose calls always fail, which sends every
// caller down its deterministic fallback path.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	case "gemini":
		return newGeminiClient(ctx, cfg)
	case "", "none":
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
