package util

import (
	"net/http"
	"testing"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.internal:3128", "", "localhost,.corp.example")

	tests := []struct {
		url  string
		want string
	}{
		{"http://api.openai.com/v1", "http://proxy.internal:3128"},
		{"https://api.anthropic.com/v1/messages", "http://proxy.internal:3128"},
		{"http://localhost:11434/api/generate", ""},
		{"https://nim.corp.example/v1", ""},
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s) error: %v", tt.url, err)
		}

		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tt.want {
			t.Errorf("proxy(%s) = %q, want %q", tt.url, gotStr, tt.want)
		}
	}
}

func TestNewProxyFunc_SeparateHTTPS(t *testing.T) {
	proxy := NewProxyFunc("http://plain:8080", "http://secure:8443", "")

	req, _ := http.NewRequest(http.MethodGet, "https://integrate.api.nvidia.com/v1", nil)
	got, err := proxy(req)
	if err != nil || got == nil || got.Host != "secure:8443" {
		t.Errorf("Expected HTTPS proxy, got %v (%v)", got, err)
	}
}
