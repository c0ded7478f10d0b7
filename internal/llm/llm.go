package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/comigor/chatlogger-go/internal/config"
	"github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// NewClient creates a new OpenAI client
func NewClient(cfg config.LLMConfig) *openai.Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return openai.NewClientWithConfig(config)
}

// New selects the generator named by cfg.Provider. Without an API key it
// returns a generator that always fails with ErrNotConfigured, so callers take
// their fallback path instead of failing at startup.
func New(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.APIKey == "" {
		return unconfigured{}, nil
	}
	switch provider {
	case config.ProviderOpenAI:
		return NewOpenAI(NewClient(cfg)), nil
	case config.ProviderGemini, "":
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// DisplayName is the provider label shown on the dashboard.
func DisplayName(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case config.ProviderOpenAI:
		return "OpenAI"
	case config.ProviderGemini, "":
		return "Gemini"
	default:
		return provider
	}
}

// OpenAI generates text through the chat completions API.
type OpenAI struct {
	client Client
}

// NewOpenAI wraps an OpenAI-compatible chat completion client.
func NewOpenAI(client Client) *OpenAI {
	return &OpenAI{client: client}
}

// Generate sends prompt as a single user message.
func (o *OpenAI) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.Model,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Gemini generates text through langchaingo's Google AI model.
type Gemini struct {
	model llms.Model
}

// NewGemini builds a Gemini generator from cfg.
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*Gemini, error) {
	model, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return NewGeminiWithModel(model), nil
}

// NewGeminiWithModel wraps any langchaingo model; tests pass a fake.
func NewGeminiWithModel(model llms.Model) *Gemini {
	return &Gemini{model: model}
}

// Generate sends prompt as a single prompt completion.
func (g *Gemini) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	opts := []llms.CallOption{
		llms.WithTemperature(float64(p.Temperature)),
		llms.WithMaxTokens(p.MaxTokens),
	}
	if p.Model != "" {
		opts = append(opts, llms.WithModel(p.Model))
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return out, nil
}
