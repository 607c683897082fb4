package source

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// BaseAdapter provides the HTML tree helpers shared by platform adapters
type BaseAdapter struct{}

// ParseHTML parses HTML string into a node tree
func (b *BaseAdapter) ParseHTML(htmlContent string) (*html.Node, error) {
	return html.Parse(strings.NewReader(htmlContent))
}

// ExtractText extracts text content from a node with whitespace collapsed
func (b *BaseAdapter) ExtractText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf strings.Builder
	b.collectText(n, &buf, false)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// VisibleText is ExtractText without script, style and noscript contents
func (b *BaseAdapter) VisibleText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf strings.Builder
	b.collectText(n, &buf, true)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func (b *BaseAdapter) collectText(n *html.Node, buf *strings.Builder, visibleOnly bool) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
		buf.WriteString(" ")
		return
	}
	if visibleOnly && n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.collectText(c, buf, visibleOnly)
	}
}

// HasClass checks if a node has a specific CSS class
func (b *BaseAdapter) HasClass(n *html.Node, className string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, class := range strings.Fields(b.GetAttribute(n, "class")) {
		if class == className {
			return true
		}
	}
	return false
}

// ClassWithPrefix returns the first class on n starting with prefix
func (b *BaseAdapter) ClassWithPrefix(n *html.Node, prefix string) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	for _, class := range strings.Fields(b.GetAttribute(n, "class")) {
		if strings.HasPrefix(class, prefix) {
			return class
		}
	}
	return ""
}

// GetAttribute gets an attribute value from a node
func (b *BaseAdapter) GetAttribute(n *html.Node, attrKey string) string {
	if n == nil {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// HasAttribute reports whether the attribute is present, even if empty
func (b *BaseAdapter) HasAttribute(n *html.Node, attrKey string) bool {
	if n == nil {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return true
		}
	}
	return false
}

// FindAll finds all nodes matching a predicate
func (b *BaseAdapter) FindAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

// FindFirst finds the first node matching a predicate
func (b *BaseAdapter) FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}

	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

// FindOuter finds matching nodes without descending into a match, so nested
// elements of the same kind are not reported twice
func (b *BaseAdapter) FindOuter(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

// FirstText returns the text of the first match of any predicate, in order
func (b *BaseAdapter) FirstText(n *html.Node, predicates ...func(*html.Node) bool) string {
	for _, p := range predicates {
		if found := b.FindFirst(n, p); found != nil {
			if text := b.ExtractText(found); text != "" {
				return text
			}
		}
	}
	return ""
}

// element matches an element by tag name; empty tag matches any element
func element(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && (tag == "" || n.Data == tag)
	}
}

// withClass matches an element by tag (optional) and CSS class
func (b *BaseAdapter) withClass(tag, class string) func(*html.Node) bool {
	isElem := element(tag)
	return func(n *html.Node) bool {
		return isElem(n) && b.HasClass(n, class)
	}
}

// withAttr matches an element by tag (optional) and exact attribute value
func (b *BaseAdapter) withAttr(tag, key, val string) func(*html.Node) bool {
	isElem := element(tag)
	return func(n *html.Node) bool {
		return isElem(n) && b.GetAttribute(n, key) == val
	}
}

// resolveURL resolves href against the page URL, returning the page URL when
// href is not a usable http(s) link
func resolveURL(pageURL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return pageURL
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return pageURL
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return pageURL
	}
	return resolved.String()
}
