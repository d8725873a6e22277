package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel = openai.GPT4oMini
	defaultNIMModel    = "meta/llama-3.1-8b-instruct"
	defaultNIMBaseURL  = "https://integrate.api.nvidia.com/v1"
)

// OpenAIProvider talks to OpenAI-compatible chat completion APIs.
// It serves both OpenAI and NVIDIA NIM endpoints.
type OpenAIProvider struct {
	client *openai.Client
	name   string
	model  string
	config Config
	retry  retryPolicy
}

// NewOpenAIProvider creates a provider for the OpenAI API
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	return newOpenAICompatible(ProviderOpenAI, defaultOpenAIModel, "", config)
}

// NewNIMProvider creates a provider for NVIDIA NIM's OpenAI-compatible API
func NewNIMProvider(config Config) (*OpenAIProvider, error) {
	return newOpenAICompatible(ProviderNIM, defaultNIMModel, defaultNIMBaseURL, config)
}

func newOpenAICompatible(name, defaultModel, defaultBaseURL string, config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingAPIKey)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	clientConfig.HTTPClient = newHTTPClient(config)

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		name:   name,
		model:  model,
		config: config,
		retry:  config.retryPolicy(),
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Model returns the chat model in use
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Complete sends prompt as a single user message
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   p.config.maxTokens(),
		Temperature: p.config.temperature(),
	}

	return p.retry.do(ctx, func(ctx context.Context) (string, error) {
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", classifyOpenAIError(p.name, err)
		}

		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
		}

		content := resp.Choices[0].Message.Content
		if strings.TrimSpace(content) == "" {
			// Empty content still goes through JSON recovery with defaults
			return "{}", nil
		}
		return content, nil
	})
}

// classifyOpenAIError marks rate limits, server errors and transport
// failures as retryable
func classifyOpenAIError(name string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", name, statusError(apiErr.HTTPStatusCode, apiErr.Message))
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%s: %w", name, statusError(reqErr.HTTPStatusCode, reqErr.Error()))
	}

	return &retryableError{err: fmt.Errorf("%s API request failed: %w", name, err)}
}
