package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Veraticus/thrift/internal/common"
)

// geminiClient implements the Client interface over the Gemini API.
type geminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(ctx context.Context, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	maxTokens := int32(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &geminiClient{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Complete sends a single system and user instruction to Gemini.
func (c *geminiClient) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	return c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}, temperature)
}

// Chat sends a role-tagged conversation to Gemini.
func (c *geminiClient) Chat(ctx context.Context, messages []Message, temperature float64) (string, error) {
	system, turns := splitSystem(messages)

	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		MaxOutputTokens: c.maxTokens,
	}
	if system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return "", &common.RetryableError{Err: fmt.Errorf("gemini generate content: %w", err), Retryable: true}
	}

	text := resp.Text()
	if text == "" {
		return "", common.ErrEmptyResponse
	}

	return text, nil
}
