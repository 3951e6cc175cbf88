package provider

import (
	"context"
	"errors"

	"github.com/gradscout/gradscout/config"
	openai_provider "github.com/gradscout/gradscout/provider/openai"
)

// Provider is the interface all LLM implementations must satisfy. The match
// pipeline works without one; callers that have no provider fall back to the
// deterministic keyword paths and the template composer.
type Provider interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateWithTokens produces a completion and reports input/output
	// token usage for cost tracking.
	GenerateWithTokens(ctx context.Context, prompt string) (string, int64, int64, error)

	// CalculateCost converts token usage into a dollar estimate.
	CalculateCost(inputTokens, outputTokens int64) float64
}

// ErrUnsupportedProvider is returned for provider types the factory does not
// recognize.
var ErrUnsupportedProvider = errors.New("unsupported LLM provider")

// ErrNotConfigured is returned when the selected provider has no API key.
var ErrNotConfigured = errors.New("LLM provider not configured")

// NewProvider creates an LLM client from configuration.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, ErrNotConfigured
		}
		return openai_provider.NewClient(
			cfg.APIKey,
			cfg.BaseURL,
			cfg.Model,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
			cfg.CostPer1KInput,
			cfg.CostPer1KOutput,
		), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
