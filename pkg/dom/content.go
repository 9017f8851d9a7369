// pkg/dom/content.go
package dom

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode || n.Type == html.CommentNode {
		return n.Data
	}
	return htmlquery.InnerText(n)
}

// SetTextContent replaces the children of n with a single text node.
func SetTextContent(n *html.Node, text string) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode || n.Type == html.CommentNode {
		n.Data = text
		return
	}
	RemoveChildren(n)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// InnerHTML returns the serialized HTML of n's children.
func InnerHTML(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// Rendering into a strings.Builder only fails on ErrorNode children.
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

// OuterHTML returns the serialized HTML of n itself. Fragments render their
// children.
func OuterHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	if IsFragment(n) {
		return InnerHTML(n)
	}
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// ParseFragment parses markup as the children of a detached context element.
// A nil or non-element context parses as the body of a div.
func ParseFragment(markup string, context *html.Node) ([]*html.Node, error) {
	if !IsElement(context) {
		context = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return nodes, nil
}

// SetInnerHTML parses markup and replaces n's children with the result.
// Nothing is sanitized.
func SetInnerHTML(n *html.Node, markup string) error {
	if n == nil {
		return nil
	}
	nodes, err := ParseFragment(markup, n)
	if err != nil {
		return err
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}
