package providers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic implements the Completer interface using the official SDK.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates a new Anthropic provider.
func NewAnthropic(model string) (*Anthropic, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}
	// The shared backoff helper owns retries, so SDK retries stay off.
	opts := []option.RequestOption{option.WithAPIKey(key), option.WithMaxRetries(0)}
	if base := os.Getenv("PRCOMPANION_ANTHROPIC_BASE_URL"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	return &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	var resp CompletionResponse
	err := retryWithBackoff(ctx, 3, func() error {
		result, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return classifyAPIError(err)
		}

		var content string
		for _, block := range result.Content {
			if block.Type == "text" {
				content += block.Text
			}
		}
		if content == "" {
			return fmt.Errorf("empty text content in API response")
		}

		resp = CompletionResponse{
			Content:    content,
			TokensUsed: int(result.Usage.InputTokens + result.Usage.OutputTokens),
		}
		return nil
	})

	return resp, err
}

// classifyAPIError maps SDK errors onto the shared retry error types.
func classifyAPIError(err error) error {
	var apierr *anthropic.Error
	if !errors.As(err, &apierr) {
		return fmt.Errorf("anthropic API call: %w", err)
	}
	switch {
	case apierr.StatusCode == 429:
		return &rateLimitError{}
	case apierr.StatusCode == 401 || apierr.StatusCode == 403:
		return &authError{message: apierr.Error()}
	case apierr.StatusCode >= 500:
		return &serverError{statusCode: apierr.StatusCode, body: apierr.Error()}
	default:
		return fmt.Errorf("anthropic API call: %w", err)
	}
}
