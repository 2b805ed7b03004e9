// Package security holds API key checks and secret masking helpers.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// APIKeyFormat maps provider names to the shape of their issued keys.
var APIKeyFormat = map[string]*regexp.Regexp{
	"groq":   regexp.MustCompile(`^gsk_[a-zA-Z0-9]{20,}$`),
	"openai": regexp.MustCompile(`^sk-[a-zA-Z0-9_-]{20,}$`),
}

// expectedPrefix is shown in format errors.
var expectedPrefix = map[string]string{
	"groq":   "gsk_...",
	"openai": "sk-...",
}

// MaskAPIKey masks an API key, showing only the last 4 characters.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// ValidateAPIKeyFormat checks an API key against the known format of provider.
// Providers without a known format only require a non-empty key.
func ValidateAPIKeyFormat(provider, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("API key is required for %s provider", provider)
	}

	if len(apiKey) < 20 {
		return fmt.Errorf("API key appears to be invalid (too short)")
	}

	if pattern, ok := APIKeyFormat[provider]; ok && !pattern.MatchString(apiKey) {
		return fmt.Errorf("API key format appears invalid for %s provider (expected format: %s)",
			provider, expectedPrefix[provider])
	}

	return nil
}

// keyPattern matches Groq (gsk_) and OpenAI (sk-, sk-proj-) keys inside free text.
var keyPattern = regexp.MustCompile(`\b(?:gsk_|sk-)[a-zA-Z0-9_-]{20,}`)

// MaskKeys replaces every API key in s with its masked form.
func MaskKeys(s string) string {
	return keyPattern.ReplaceAllStringFunc(s, MaskAPIKey)
}

var logPatterns = []struct {
	regex       *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`), "Bearer ****"},
	{regexp.MustCompile(`(?i)(groq_key|api[_-]?key|apikey|api_secret|secret[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9._-]+["']?`), "$1=****"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?[^\s"']+["']?`), "$1=****"},
}

// SanitizeForLogging masks API keys, bearer tokens and credential
// assignments in s. Provider error payloads pass through here before logging.
func SanitizeForLogging(s string) string {
	result := MaskKeys(s)
	for _, p := range logPatterns {
		result = p.regex.ReplaceAllString(result, p.replacement)
	}
	return result
}
