package ai

import (
	"fmt"
	"sort"
)

// Profile bundles the model and prompt parameters of one generation style.
type Profile struct {
	Name         string
	Description  string
	Model        string
	SystemPrompt string
	UserTemplate string
	Temperature  float32
	MaxTokens    int
}

const (
	// DefaultProfileName is used when no profile is configured.
	DefaultProfileName = "memix"

	// DefaultTemperature is the sampling temperature of the built-in profiles.
	DefaultTemperature = 0.5

	// DefaultMaxTokens caps the length of a generated commit message.
	DefaultMaxTokens = 128
)

// DetailedSystemPrompt asks for specific, present-tense messages and gives examples.
const DetailedSystemPrompt = `You are a professional software engineer. Based on a git diff, write a specific, concise commit message that clearly describes what changed and why.
Requirements:
- Use present tense ("add feature", not "added").
- Be specific: if the README was updated with setup instructions, say so.
- Never say "update README" or "update file"; describe what the update is.
- Do not reference "this diff", "the following", or file names unless essential.
- Avoid vague verbs like "change", "modify", "update" unless followed by a specific reason.
- No greetings, no colons, no markdown formatting, no explanations. Only the commit message.

Examples:
- Add setup instructions for Groq API key in README
- Clarify usage example in README.md
- Improve install section to avoid confusion for Windows users
- Fix typo in README instructions for .env setup
- Add note on security tradeoffs in API key usage

The goal is to write commit messages as if a human carefully summarized the purpose of the change.`

// ClassicSystemPrompt is the short instruction of the classic profile.
const ClassicSystemPrompt = "You are a senior software engineer writing clean, conventional git commit messages."

var builtinProfiles = map[string]Profile{
	"memix": {
		Name:         "memix",
		Description:  "Specific present-tense messages with few-shot examples",
		Model:        "mistral-saba-24b",
		SystemPrompt: DetailedSystemPrompt,
		UserTemplate: "Git diff:\n{{.Diff}}",
		Temperature:  DefaultTemperature,
		MaxTokens:    DefaultMaxTokens,
	},
	"classic": {
		Name:         "classic",
		Description:  "Short conventional messages",
		Model:        "mixtral-8x7b-32768",
		SystemPrompt: ClassicSystemPrompt,
		UserTemplate: "Write a concise git commit message based on this diff:\n{{.Diff}}",
		Temperature:  DefaultTemperature,
		MaxTokens:    DefaultMaxTokens,
	},
}

// LookupProfile returns the built-in profile with the given name.
// An empty name selects DefaultProfileName.
func LookupProfile(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfileName
	}
	p, ok := builtinProfiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile: %s (available: %v)", name, ProfileNames())
	}
	return p, nil
}

// ProfileNames returns the names of the built-in profiles in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profiles returns the built-in profiles in name order.
func Profiles() []Profile {
	names := ProfileNames()
	profiles := make([]Profile, 0, len(names))
	for _, name := range names {
		profiles = append(profiles, builtinProfiles[name])
	}
	return profiles
}

// WithOverrides returns a copy of p where every non-zero argument replaces
// the profile's value.
func (p Profile) WithOverrides(model, systemPrompt, userTemplate string, temperature float32, maxTokens int) Profile {
	if model != "" {
		p.Model = model
	}
	if systemPrompt != "" {
		p.SystemPrompt = systemPrompt
	}
	if userTemplate != "" {
		p.UserTemplate = userTemplate
	}
	if temperature != 0 {
		p.Temperature = temperature
	}
	if maxTokens != 0 {
		p.MaxTokens = maxTokens
	}
	return p
}
