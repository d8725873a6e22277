package adapters

import (
	"strings"
	"unicode/utf8"
)

// PlainAdapter passes plain-text documents through unchanged
type PlainAdapter struct{}

// NewPlainAdapter creates a new plain-text adapter
func NewPlainAdapter() *PlainAdapter {
	return &PlainAdapter{}
}

// Name returns the adapter name
func (a *PlainAdapter) Name() string {
	return "plain"
}

// CanHandle matches text/plain content or .txt URLs without a content type
func (a *PlainAdapter) CanHandle(rawURL string, contentType string) bool {
	if strings.HasPrefix(contentType, "text/plain") {
		return true
	}
	return contentType == "" && strings.HasSuffix(strings.ToLower(rawURL), ".txt")
}

// ExtractText returns the body as text, replacing invalid UTF-8
func (a *PlainAdapter) ExtractText(body []byte, rawURL string) (string, error) {
	if utf8.Valid(body) {
		return string(body), nil
	}
	return strings.ToValidUTF8(string(body), "�"), nil
}
