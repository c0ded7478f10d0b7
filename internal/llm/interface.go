package llm

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// ErrNotConfigured is returned by generators that have no credentials.
var ErrNotConfigured = errors.New("llm provider API key not configured")

// Params are the generation settings sent with every prompt.
type Params struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Generator turns a prompt into free text. Implementations make one round trip
// and never retry.
type Generator interface {
	Generate(ctx context.Context, prompt string, p Params) (string, error)
}

// Client is minimal subset of openai.Client used by the OpenAI generator; it is easy to mock in tests.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string, p Params) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	return f(ctx, prompt, p)
}

type unconfigured struct{}

func (u unconfigured) Generate(context.Context, string, Params) (string, error) {
	return "", ErrNotConfigured
}
