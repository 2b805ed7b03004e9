package ai

import (
	"fmt"
	"time"

	"github.com/memix/memix/internal/pkg/config"
)

// Provider names for the supported OpenAI-compatible services.
const (
	ProviderNameGroq   = "groq"
	ProviderNameOpenAI = "openai"
)

// DefaultGroqEndpoint is the base URL of Groq's OpenAI-compatible API.
const DefaultGroqEndpoint = "https://api.groq.com/openai/v1"

// DefaultTimeout applies when the configuration does not set one.
const DefaultTimeout = 60 * time.Second

// ResolveProfile picks the configured built-in profile and applies the
// model, prompt and sampling overrides from cfg.
func ResolveProfile(cfg *config.Config) (Profile, error) {
	if cfg == nil {
		return Profile{}, fmt.Errorf("configuration is required")
	}

	base, err := LookupProfile(cfg.Provider.Profile)
	if err != nil {
		return Profile{}, err
	}

	return base.WithOverrides(
		cfg.Provider.Model,
		cfg.Prompt.System,
		cfg.Prompt.UserTemplate,
		cfg.Provider.Temperature,
		cfg.Provider.MaxTokens,
	), nil
}

// NewProvider creates the chat provider described by cfg.
func NewProvider(cfg *config.Config) (Provider, error) {
	profile, err := ResolveProfile(cfg)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	pc := ProviderConfig{
		APIKey:   cfg.Provider.APIKey,
		Endpoint: cfg.Provider.Endpoint,
		Timeout:  timeout,
	}

	switch cfg.Provider.Name {
	case ProviderNameGroq, "":
		if pc.Endpoint == "" {
			pc.Endpoint = DefaultGroqEndpoint
		}
		return NewChatProvider(ProviderNameGroq, pc, profile)

	case ProviderNameOpenAI:
		return NewChatProvider(ProviderNameOpenAI, pc, profile)

	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider.Name)
	}
}
