// Package ai drafts commit messages through OpenAI-compatible chat-completion APIs.
package ai

import (
	"context"
	"time"
)

// GenerateRequest contains the data needed to generate a commit message.
type GenerateRequest struct {
	// Diff is the staged diff text. It must be non-empty.
	Diff string
}

// GenerateResponse contains the generated commit message.
type GenerateResponse struct {
	// Message is the trimmed content of the first choice.
	Message     string
	Model       string
	TotalTokens int
}

// ProviderConfig contains the transport settings for a chat provider.
type ProviderConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// Provider defines the interface for commit message generators.
type Provider interface {
	GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	Name() string
}
