// pkg/dom/xpath.go
package dom

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// isXPath reports whether selector should be evaluated as XPath.
func isXPath(selector string) bool {
	return strings.HasPrefix(selector, "/") ||
		strings.HasPrefix(selector, "./") ||
		strings.HasPrefix(selector, "(")
}

// queryXPath evaluates expr relative to n. Absolute location paths are scoped
// to n's subtree so XPath and CSS selectors agree on what "inside" means.
func queryXPath(n *html.Node, expr string) ([]*html.Node, error) {
	if strings.HasPrefix(expr, "/") {
		expr = "." + expr
	}
	hits, err := htmlquery.QueryAll(n, expr)
	if err != nil {
		return nil, NewSelectorError(expr, err)
	}
	out := make([]*html.Node, 0, len(hits))
	seen := make(map[*html.Node]struct{}, len(hits))
	for _, h := range hits {
		if h == n || !IsElement(h) {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out, nil
}

// PathOf returns an XPath expression that locates n from the document
// root. The nearest ancestor with an id anchors the path. Nodes in a detached
// fragment get a path relative to the fragment.
func PathOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var steps []string
	anchored := false
	for el := n; el != nil && el.Type != html.DocumentNode; el = el.Parent {
		if el.Type != html.ElementNode || el.Data == "" {
			continue
		}
		if id := htmlquery.SelectAttr(el, "id"); id != "" {
			steps = append([]string{fmt.Sprintf("//*[@id='%s']", id)}, steps...)
			anchored = true
			break
		}
		steps = append([]string{fmt.Sprintf("%s[%d]", el.Data, siblingIndex(el))}, steps...)
	}
	switch {
	case len(steps) == 0:
		return "/"
	case anchored:
		return strings.Join(steps, "/")
	}
	return "/" + strings.Join(steps, "/")
}

// PathsOf maps PathOf over nodes.
func PathsOf(nodes []*html.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = PathOf(n)
	}
	return out
}

// siblingIndex is the 1-based position of el among same-tag siblings.
func siblingIndex(el *html.Node) int {
	i := 1
	for s := el.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && s.Data == el.Data {
			i++
		}
	}
	return i
}
