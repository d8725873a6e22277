package adapters

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Adapter turns a fetched document into plain text ready for segmentation
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given URL/content
	CanHandle(url string, contentType string) bool

	// ExtractText returns the regulatory text carried by the document body
	ExtractText(body []byte, url string) (string, error)
}

// Registry picks an adapter per document. Adapters are tried in
// registration order; the generic adapter takes everything else.
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry returns the built-in plain and legal adapters followed by extra
func NewRegistry(extra ...Adapter) *Registry {
	return &Registry{
		adapters: append([]Adapter{NewPlainAdapter(), NewLegalAdapter()}, extra...),
		generic:  NewGenericAdapter(),
	}
}

// FindAdapter returns the first adapter that accepts the document
func (r *Registry) FindAdapter(url string, contentType string) Adapter {
	i := slices.IndexFunc(r.adapters, func(a Adapter) bool {
		return a.CanHandle(url, contentType)
	})
	if i < 0 {
		return r.generic
	}
	return r.adapters[i]
}

// BaseAdapter provides HTML helpers shared by adapters
type BaseAdapter struct{}

// ParseHTML parses HTML bytes into a node tree
func (b *BaseAdapter) ParseHTML(body []byte) (*html.Node, error) {
	return html.Parse(strings.NewReader(string(body)))
}

// GetAttribute gets an attribute value from a node
func (b *BaseAdapter) GetAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// FindFirst returns the first node, in document order, matching predicate
func (b *BaseAdapter) FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node
	walkNodes(n, func(node *html.Node) bool {
		if result == nil && predicate(node) {
			result = node
		}
		return result == nil
	})
	return result
}

// RemoveAll detaches every node matching predicate, subtrees included
func (b *BaseAdapter) RemoveAll(n *html.Node, predicate func(*html.Node) bool) {
	var matched []*html.Node
	walkNodes(n, func(node *html.Node) bool {
		if predicate(node) {
			matched = append(matched, node)
			return false
		}
		return true
	})

	for _, node := range matched {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// walkNodes visits n depth first. Returning false from visit skips the
// node's children.
func walkNodes(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, visit)
	}
}

// isElement returns a predicate matching element nodes with any of the given tags
func isElement(tags ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, tag := range tags {
			if n.Data == tag {
				return true
			}
		}
		return false
	}
}
