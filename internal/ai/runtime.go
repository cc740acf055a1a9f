package ai

import (
	"context"
	"strings"
)

// Runtime is the minimal surface retrieval and answering need from a model
// backend. Production code uses *Client; tests substitute fakes.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers accepted in configuration.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderAzure      = "azure"
	ProviderOllama     = "ollama"
	ProviderLocal      = "local"
)

// ModelString renders the model identifier sent on the wire. OpenRouter
// expects vendor-qualified ids like "openai/gpt-4o"; a bare model name is
// qualified with the provider there. Everything else passes through as-is.
func ModelString(provider, model string) string {
	if provider == ProviderOpenRouter && !strings.Contains(model, "/") {
		return ProviderOpenAI + "/" + model
	}
	return model
}

// CheckConnection sends a minimal round trip to verify the configured
// backend responds at all. Returns the model's reply on success.
func CheckConnection(ctx context.Context, rt Runtime, model string) (string, error) {
	resp, err := rt.Generate(ctx, GenerateRequest{
		Model:     model,
		Messages:  []Message{{Role: RoleUser, Content: "Reply with OK"}},
		MaxTokens: 10,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
