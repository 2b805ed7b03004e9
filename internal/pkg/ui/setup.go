package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/memix/memix/internal/pkg/ai"
	"github.com/memix/memix/internal/pkg/config"
	"github.com/memix/memix/internal/pkg/security"
)

// SetupResult holds the answers collected by the setup wizard.
type SetupResult struct {
	Provider string
	APIKey   string
	Profile  string
}

// NeedsSetup reports whether the setup wizard should run: no API key could
// be resolved and in is an interactive terminal.
func NeedsSetup(apiKey string, in *os.File) bool {
	return strings.TrimSpace(apiKey) == "" && in != nil && IsTerminal(in)
}

// RunInteractiveSetup asks for the provider, API key and profile and saves
// them to the configuration file.
func RunInteractiveSetup(cfgMgr *config.ViperManager) (*SetupResult, error) {
	fmt.Println("No API key found. Let's set up memix!")
	fmt.Println()

	result := &SetupResult{
		Provider: ai.ProviderNameGroq,
		Profile:  ai.DefaultProfileName,
	}

	profileOptions := make([]huh.Option[string], 0)
	for _, p := range ai.Profiles() {
		profileOptions = append(profileOptions, huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, p.Description), p.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select provider").
				Options(
					huh.NewOption("Groq", ai.ProviderNameGroq),
					huh.NewOption("OpenAI", ai.ProviderNameOpenAI),
				).
				Value(&result.Provider),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("API Key").
				Description("Stored in "+cfgMgr.GetConfigPath()+" with 0600 permissions").
				Value(&result.APIKey).
				Password(true).
				Validate(func(s string) error {
					return validateAPIKey(result.Provider, s)
				}),
			huh.NewSelect[string]().
				Title("Prompt profile").
				Options(profileOptions...).
				Value(&result.Profile),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}
	result.APIKey = strings.TrimSpace(result.APIKey)

	if err := saveSetup(cfgMgr, result); err != nil {
		return nil, err
	}

	fmt.Printf("\nConfiguration saved to %s\n\n", cfgMgr.GetConfigPath())

	return result, nil
}

func validateAPIKey(provider, key string) error {
	return security.ValidateAPIKeyFormat(provider, strings.TrimSpace(key))
}

// saveSetup persists the wizard answers, creating the config file if needed.
func saveSetup(cfgMgr *config.ViperManager, result *SetupResult) error {
	if !cfgMgr.ConfigExists() {
		if err := cfgMgr.Init(); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	values := []struct{ key, value string }{
		{"provider.name", result.Provider},
		{"provider.api_key", result.APIKey},
		{"provider.profile", result.Profile},
	}
	for _, kv := range values {
		if err := cfgMgr.Set(kv.key, kv.value); err != nil {
			return fmt.Errorf("failed to set %s: %w", kv.key, err)
		}
	}

	return nil
}
