package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const azureAPIVersion = "2024-12-01-preview"

// Azure implements the Completer interface for Azure AI Foundry deployments.
// Foundry serves the OpenAI chat dialect behind per-deployment URLs with
// api-key header auth.
type Azure struct {
	endpoint string
	token    string
	model    string
	client   *http.Client
}

// NewAzure creates a new Azure AI Foundry provider. The endpoint comes from
// AI_FOUNDRY_ENDPOINT and the deployment name from the model argument or
// AI_FOUNDRY_MODEL.
func NewAzure(model string) (*Azure, error) {
	endpoint := os.Getenv("AI_FOUNDRY_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("AI_FOUNDRY_ENDPOINT environment variable is not set")
	}
	token := os.Getenv("AI_FOUNDRY_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("AI_FOUNDRY_TOKEN environment variable is not set")
	}
	if model == "" {
		model = os.Getenv("AI_FOUNDRY_MODEL")
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &Azure{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		model:    model,
		client:   &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (a *Azure) Name() string { return "azure" }

func (a *Azure) url() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		a.endpoint, a.model, azureAPIVersion)
}

func (a *Azure) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	auth := func(r *http.Request) {
		r.Header.Set("api-key", a.token)
	}
	return chatComplete(ctx, a.client, a.url(), auth, a.model, req)
}
