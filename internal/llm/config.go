// Package llm provides centralized LLM configuration and client abstractions
// over the supported providers.
package llm

import (
	"fmt"
	"maps"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short extraction tasks
	TierLite ModelTier = "lite"
	// TierStandard is for structured output of moderate size
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long generations such as a whole CV
	TierAdvanced ModelTier = "advanced"
)

// fallbackTiers are tried, in order, when a tier has no model.
var fallbackTiers = []ModelTier{TierStandard, TierLite}

// Provider names an LLM vendor.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ParseProvider validates a provider name. An empty name means Gemini.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	}
	return "", fmt.Errorf("unknown LLM provider %q (want gemini or openai)", s)
}

var defaultModels = map[Provider]map[ModelTier]string{
	ProviderGemini: {
		TierLite:     "gemini-2.5-flash-lite",
		TierStandard: "gemini-2.5-flash",
		TierAdvanced: "gemini-2.5-pro",
	},
	ProviderOpenAI: {
		TierLite:     "gpt-4o-mini",
		TierStandard: "gpt-4o",
		TierAdvanced: "gpt-4o",
	},
}

// Config selects a provider and the model used for each tier.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// ConfigFor returns the default models of p. Unknown providers get Gemini's.
func ConfigFor(p Provider) *Config {
	models, ok := defaultModels[p]
	if !ok {
		p, models = ProviderGemini, defaultModels[ProviderGemini]
	}
	return &Config{Provider: p, Models: maps.Clone(models)}
}

// GetModel returns the model for tier, falling back to the standard and then
// the lite model. It returns "" when nothing is configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range append([]ModelTier{tier}, fallbackTiers...) {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithOverride returns a copy of c that uses model for every tier. An empty
// model returns c unchanged.
func (c *Config) WithOverride(model string) *Config {
	if model == "" {
		return c
	}
	out := &Config{Provider: c.Provider, Models: make(map[ModelTier]string, 3)}
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		out.Models[tier] = model
	}
	return out
}
