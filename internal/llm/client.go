package llm

import (
	"context"
	"errors"
)

var (
	// ErrNoAPIKey is returned when a client is requested without a credential.
	ErrNoAPIKey = errors.New("API key is required")
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// systemInstruction frames every request; the task itself goes in the prompt.
const systemInstruction = "You write concise, factual CV content and follow the requested output format exactly."

// temperature is kept low so regenerating from the same answers gives similar CVs.
const temperature = 0.1

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateJSON generates JSON content using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = ConfigFor(ProviderGemini)
	}

	var (
		client Client
		err    error
	)
	switch config.Provider {
	case ProviderOpenAI:
		client, err = NewOpenAIClient(config, apiKey)
	default:
		client, err = NewGeminiClient(ctx, config, apiKey)
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}
