package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestAnthropicProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Model != "claude-3-5-sonnet-20241022" {
			t.Errorf("Expected default model, got %s", req.Model)
		}
		if req.MaxTokens != 700 {
			t.Errorf("Expected max tokens 700, got %d", req.MaxTokens)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("Expected a single user message, got %+v", req.Messages)
		}

		_, _ = w.Write([]byte(`{"id":"msg_123","type":"message","role":"assistant",
			"content":[{"type":"text","text":"Here you go: "},{"type":"text","text":"{\"coverage_status\":\"partial\"}"}],
			"model":"claude-3-5-sonnet-20241022","stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	out, err := provider.Complete(context.Background(), "score this")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out != `Here you go: {"coverage_status":"partial"}` {
		t.Errorf("Unexpected content: %s", out)
	}
}

func TestAnthropicProvider_MissingAPIKey(t *testing.T) {
	_, err := NewAnthropicProvider(Config{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestAnthropicProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`))
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider(Config{APIKey: "k", BaseURL: server.URL, BaseBackoff: time.Millisecond})
	_, err := provider.Complete(context.Background(), "p")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "bad model") {
		t.Errorf("Expected API message in error, got %v", err)
	}
	if IsRetryable(err) {
		t.Error("Expected 400 not to be retryable")
	}
}

func TestAnthropicProvider_RateLimitRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider(Config{
		APIKey:      "k",
		BaseURL:     server.URL,
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
	})

	_, err := provider.Complete(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "max retries exceeded") {
		t.Errorf("Expected max retries error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
}

func TestAnthropicProvider_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"msg_1","content":[]}`))
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider(Config{APIKey: "k", BaseURL: server.URL})
	_, err := provider.Complete(context.Background(), "p")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestAnthropicProvider_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider(Config{APIKey: "k", BaseURL: server.URL, MaxRetries: 3})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := provider.Complete(ctx, "p")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}
