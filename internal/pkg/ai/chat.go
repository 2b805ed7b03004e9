package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/memix/memix/internal/pkg/errors"
	"github.com/memix/memix/internal/pkg/security"
	"github.com/sashabaranov/go-openai"
)

// ChatProvider implements Provider against an OpenAI-compatible
// chat-completion endpoint. Each generation is a single request with no retry.
type ChatProvider struct {
	name           string
	client         *openai.Client
	config         ProviderConfig
	profile        Profile
	promptTemplate *PromptTemplate
}

// NewChatProvider creates a provider named name that talks to config.Endpoint
// (the OpenAI default when empty) using the given profile.
func NewChatProvider(name string, config ProviderConfig, profile Profile) (*ChatProvider, error) {
	if config.APIKey == "" {
		return nil, apperrors.NewMissingAPIKeyError(name)
	}
	if profile.Model == "" {
		return nil, apperrors.NewInvalidConfigError("model is required")
	}

	pt := NewPromptTemplateFromProfile(profile)
	if err := pt.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "invalid user prompt template")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimRight(config.Endpoint, "/")
	}
	clientConfig.HTTPClient = statusRecorder{doer: &http.Client{
		Timeout: config.Timeout,
	}}

	return &ChatProvider{
		name:           name,
		client:         openai.NewClientWithConfig(clientConfig),
		config:         config,
		profile:        profile,
		promptTemplate: pt,
	}, nil
}

// Name returns the provider name.
func (p *ChatProvider) Name() string {
	return p.name
}

// BuildRequest assembles the chat-completion request for a diff:
// one system message and one user message embedding the diff.
func (p *ChatProvider) BuildRequest(diff string) (openai.ChatCompletionRequest, error) {
	userPrompt, err := p.promptTemplate.RenderUserPrompt(&PromptData{Diff: diff})
	if err != nil {
		return openai.ChatCompletionRequest{}, fmt.Errorf("failed to render prompt: %w", err)
	}

	return openai.ChatCompletionRequest{
		Model: p.profile.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: p.promptTemplate.GetSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: p.profile.Temperature,
		MaxTokens:   p.profile.MaxTokens,
	}, nil
}

// GenerateCommitMessage sends the diff to the chat endpoint and returns the
// trimmed text of the first choice. Every failure is an ErrGeneration AppError.
func (p *ChatProvider) GenerateCommitMessage(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if strings.TrimSpace(req.Diff) == "" {
		return nil, errors.New("no diff provided")
	}

	chatReq, err := p.BuildRequest(req.Diff)
	if err != nil {
		return nil, apperrors.NewGenerationError(p.name, err)
	}

	apperrors.LogAPIRequest(p.name, p.config.Endpoint, chatReq.Model, len(chatReq.Messages[1].Content))
	startTime := time.Now()

	status := 0
	resp, err := p.client.CreateChatCompletion(context.WithValue(ctx, statusKey{}, &status), chatReq)
	if err != nil {
		return nil, p.wrapAPIError(err)
	}

	responseLen := 0
	if len(resp.Choices) > 0 {
		responseLen = len(resp.Choices[0].Message.Content)
	}
	apperrors.LogAPIResponse(p.name, status, responseLen, time.Since(startTime))

	if len(resp.Choices) == 0 {
		return nil, apperrors.NewGenerationError(p.name, errors.New("response contained no choices"))
	}

	message := strings.TrimSpace(resp.Choices[0].Message.Content)
	if message == "" {
		return nil, apperrors.NewGenerationError(p.name, errors.New("response message was empty"))
	}

	return &GenerateResponse{
		Message:     message,
		Model:       resp.Model,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

// wrapAPIError logs the provider's error payload and converts err into an
// ErrGeneration AppError.
func (p *ChatProvider) wrapAPIError(err error) error {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError

	switch {
	case errors.As(err, &apiErr):
		payload, _ := json.Marshal(apiErr)
		apperrors.Error("%s API error (status %d): %s", p.name, apiErr.HTTPStatusCode,
			security.SanitizeForLogging(string(payload)))
		return apperrors.NewGenerationError(p.name, err).
			WithContext("status", apiErr.HTTPStatusCode)
	case errors.As(err, &reqErr):
		apperrors.Error("%s API error (status %d): %s", p.name, reqErr.HTTPStatusCode,
			security.SanitizeForLogging(strings.TrimSpace(string(reqErr.Body))))
		return apperrors.NewGenerationError(p.name, err).
			WithContext("status", reqErr.HTTPStatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		apperrors.Error("%s request timed out: %v", p.name, err)
	default:
		apperrors.Error("%s request failed: %v", p.name, err)
	}

	return apperrors.NewGenerationError(p.name, err)
}

type statusKey struct{}

// statusRecorder stores the HTTP status of each response in the *int
// carried by the request context.
type statusRecorder struct {
	doer openai.HTTPDoer
}

func (r statusRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := r.doer.Do(req)
	if resp != nil {
		if status, ok := req.Context().Value(statusKey{}).(*int); ok {
			*status = resp.StatusCode
		}
	}
	return resp, err
}
