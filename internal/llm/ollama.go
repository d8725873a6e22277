package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOllamaModel   = "llama3.1:8b"
	defaultOllamaBaseURL = "http://localhost:11434"
)

// OllamaProvider implements the Provider interface for Ollama local models.
// It needs no API key.
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
	config     Config
	retry      retryPolicy
}

// Ollama API structures
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	model := config.Model
	if model == "" {
		model = defaultOllamaModel
	}

	// Local models are slower than hosted ones
	if config.Timeout <= 0 {
		config.Timeout = 60
	}

	return &OllamaProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: newHTTPClient(config),
		config:     config,
		retry:      config.retryPolicy(),
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return ProviderOllama
}

// Model returns the local model in use
func (p *OllamaProvider) Model() string {
	return p.model
}

// Complete generates a non-streaming response for prompt
func (p *OllamaProvider) Complete(ctx context.Context, prompt string) (string, error) {
	req := ollamaRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
		Options: ollamaOptions{
			Temperature: p.config.temperature(),
			NumPredict:  p.config.maxTokens(),
		},
	}

	return p.retry.do(ctx, func(ctx context.Context) (string, error) {
		resp, err := p.makeRequest(ctx, req)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(resp.Response) == "" {
			return "", fmt.Errorf("%s: %w", ProviderOllama, ErrEmptyResponse)
		}
		return resp.Response, nil
	})
}

// makeRequest makes an HTTP request to the Ollama API
func (p *OllamaProvider) makeRequest(ctx context.Context, apiReq ollamaRequest) (*ollamaResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &retryableError{err: fmt.Errorf("connect to %s: %w", p.baseURL, err)}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, statusError(httpResp.StatusCode, apiErr.Error)
		}
		return nil, statusError(httpResp.StatusCode, string(respBody))
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &resp, nil
}
