package adapters

import (
	"strings"

	"github.com/ppiankov/regmap/internal/extract"
	"golang.org/x/net/html"
)

// LegalAdapter extracts the body of regulator and legislation pages
type LegalAdapter struct {
	BaseAdapter
	legalDomains []string
	legalPaths   []string
}

// NewLegalAdapter creates a new legal document adapter
func NewLegalAdapter() *LegalAdapter {
	return &LegalAdapter{
		legalDomains: []string{
			"sec.gov", "finra.org", "fca.org.uk", "mas.gov.sg",
			"ecb.europa.eu", "eur-lex.europa.eu", "legislation.gov.uk",
			"law.cornell.edu", "ecfr.gov", "federalregister.gov",
		},
		legalPaths: []string{
			"/rule", "/regulation", "/statute", "/legal", "/law", "/handbook",
		},
	}
}

// Name returns the adapter name
func (a *LegalAdapter) Name() string {
	return "legal"
}

// CanHandle checks if this is an HTML page from a regulator or legislation site
func (a *LegalAdapter) CanHandle(rawURL string, contentType string) bool {
	if contentType != "" && !strings.Contains(contentType, "html") {
		return false
	}

	lowerURL := strings.ToLower(rawURL)
	for _, domain := range a.legalDomains {
		if strings.Contains(lowerURL, domain) {
			return true
		}
	}
	for _, path := range a.legalPaths {
		if strings.Contains(lowerURL, path) {
			return true
		}
	}

	return false
}

// ExtractText returns the text of the main content area, without navigation
// and page chrome
func (a *LegalAdapter) ExtractText(body []byte, rawURL string) (string, error) {
	doc, err := a.ParseHTML(body)
	if err != nil {
		return "", err
	}

	a.RemoveAll(doc, isElement("nav", "header", "footer", "aside", "form"))

	mainContent := a.FindFirst(doc, isElement("main"))
	if mainContent == nil {
		mainContent = a.FindFirst(doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode &&
				(n.Data == "article" || a.GetAttribute(n, "role") == "main")
		})
	}
	if mainContent == nil {
		mainContent = doc
	}

	return extract.NodeText(mainContent), nil
}
