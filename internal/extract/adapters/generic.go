package adapters

import (
	"github.com/ppiankov/regmap/internal/extract"
)

// GenericAdapter is the fallback adapter for unknown HTML documents
type GenericAdapter struct{}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(url string, contentType string) bool {
	return true
}

// ExtractText returns all visible text of the page
func (a *GenericAdapter) ExtractText(body []byte, url string) (string, error) {
	return extract.VisibleText(string(body))
}
