package ai

import (
	"testing"

	"github.com/memix/memix/internal/pkg/config"
	apperrors "github.com/memix/memix/internal/pkg/errors"
)

func testConfig(name string) *config.Config {
	return &config.Config{
		Provider: config.ProviderConfig{
			Name:           name,
			APIKey:         "gsk_test-key-that-is-long-enough",
			TimeoutSeconds: 10,
		},
	}
}

func TestNewProvider_Groq(t *testing.T) {
	provider, err := NewProvider(testConfig("groq"))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if provider.Name() != ProviderNameGroq {
		t.Errorf("Name() = %q, want %q", provider.Name(), ProviderNameGroq)
	}

	chat := provider.(*ChatProvider)
	if chat.config.Endpoint != DefaultGroqEndpoint {
		t.Errorf("Endpoint = %q, want %q", chat.config.Endpoint, DefaultGroqEndpoint)
	}
}

func TestNewProvider_DefaultToGroq(t *testing.T) {
	provider, err := NewProvider(testConfig(""))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if provider.Name() != ProviderNameGroq {
		t.Errorf("Name() = %q, want %q", provider.Name(), ProviderNameGroq)
	}
}

func TestNewProvider_OpenAI(t *testing.T) {
	provider, err := NewProvider(testConfig("openai"))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if provider.Name() != ProviderNameOpenAI {
		t.Errorf("Name() = %q, want %q", provider.Name(), ProviderNameOpenAI)
	}
}

func TestNewProvider_CustomEndpoint(t *testing.T) {
	cfg := testConfig("groq")
	cfg.Provider.Endpoint = "http://localhost:8080/v1"

	provider, err := NewProvider(cfg)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if got := provider.(*ChatProvider).config.Endpoint; got != "http://localhost:8080/v1" {
		t.Errorf("Endpoint = %q", got)
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(testConfig("invalid")); err == nil {
		t.Error("NewProvider() should return error for unknown provider")
	}
}

func TestNewProvider_MissingAPIKey(t *testing.T) {
	cfg := testConfig("groq")
	cfg.Provider.APIKey = ""

	_, err := NewProvider(cfg)
	if !apperrors.HasCode(err, apperrors.ErrMissingAPIKey) {
		t.Errorf("NewProvider() error = %v, want MissingAPIKey", err)
	}
}

func TestNewProvider_DefaultTimeout(t *testing.T) {
	cfg := testConfig("groq")
	cfg.Provider.TimeoutSeconds = 0

	provider, err := NewProvider(cfg)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if got := provider.(*ChatProvider).config.Timeout; got != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", got, DefaultTimeout)
	}
}

func TestResolveProfile(t *testing.T) {
	cfg := testConfig("groq")
	cfg.Provider.Profile = "classic"
	cfg.Provider.Model = "llama-3.3-70b-versatile"
	cfg.Prompt.System = "Only output the message."

	p, err := ResolveProfile(cfg)
	if err != nil {
		t.Fatalf("ResolveProfile() error = %v", err)
	}

	if p.Name != "classic" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Model = %q", p.Model)
	}
	if p.SystemPrompt != "Only output the message." {
		t.Errorf("SystemPrompt = %q", p.SystemPrompt)
	}
	if p.Temperature != DefaultTemperature || p.MaxTokens != DefaultMaxTokens {
		t.Errorf("sampling parameters should come from the profile, got %v/%d", p.Temperature, p.MaxTokens)
	}
}

func TestResolveProfile_Unknown(t *testing.T) {
	cfg := testConfig("groq")
	cfg.Provider.Profile = "nope"

	if _, err := ResolveProfile(cfg); err == nil {
		t.Error("ResolveProfile() should reject unknown profiles")
	}
	if _, err := ResolveProfile(nil); err == nil {
		t.Error("ResolveProfile(nil) should return an error")
	}
}
