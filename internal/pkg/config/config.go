// Package config provides configuration management for memix.
package config

import (
	"fmt"
)

// Config represents the complete memix configuration.
// It is loaded once at startup and passed down by reference.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Prompt   PromptConfig   `mapstructure:"prompt"`
	UI       UIConfig       `mapstructure:"ui"`
}

// ProviderConfig contains chat-completion provider settings.
// Zero values for Model, Temperature and MaxTokens defer to the selected profile.
type ProviderConfig struct {
	Name           string  `mapstructure:"name"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Endpoint       string  `mapstructure:"endpoint"`
	Profile        string  `mapstructure:"profile"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// PromptConfig overrides the prompts of the selected profile.
type PromptConfig struct {
	System       string `mapstructure:"system"`
	UserTemplate string `mapstructure:"user_template"`
}

// UIConfig contains UI-related settings.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// Validate checks value ranges that the provider would otherwise reject.
func (c *Config) Validate() error {
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return fmt.Errorf("provider.temperature must be between 0 and 2, got %v", c.Provider.Temperature)
	}
	if c.Provider.MaxTokens < 0 {
		return fmt.Errorf("provider.max_tokens must not be negative, got %d", c.Provider.MaxTokens)
	}
	if c.Provider.TimeoutSeconds < 0 {
		return fmt.Errorf("provider.timeout_seconds must not be negative, got %d", c.Provider.TimeoutSeconds)
	}
	return nil
}
