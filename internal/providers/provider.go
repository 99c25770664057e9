package providers

import (
	"context"
	"fmt"
)

// CompletionRequest contains the prompts sent to an AI model.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// CompletionResponse contains the raw response from an AI model.
type CompletionResponse struct {
	Content    string
	TokensUsed int
}

// Completer is the provider abstraction interface.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	Name() string
}

// New creates a provider by name.
func New(provider, model string) (Completer, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "azure", "foundry":
		return NewAzure(model)
	case "gemini", "google":
		return NewGemini(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// Detect returns the first provider whose credentials are present in the
// environment, in priority order. Returns an error when none are configured.
func Detect(model string) (Completer, error) {
	for _, name := range []string{"azure", "anthropic", "openai", "gemini"} {
		if p, err := New(name, model); err == nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no AI provider configured: set AI_FOUNDRY_ENDPOINT, ANTHROPIC_API_KEY, OPENAI_API_KEY, or GEMINI_API_KEY")
}
