// pkg/dom/query.go
package dom

import (
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// compiled caches parsed CSS selector groups by source text.
var compiled sync.Map // map[string]cascadia.SelectorGroup

func compile(selector string) (cascadia.SelectorGroup, error) {
	if cached, ok := compiled.Load(selector); ok {
		return cached.(cascadia.SelectorGroup), nil
	}
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, NewSelectorError(selector, err)
	}
	compiled.Store(selector, group)
	return group, nil
}

// QueryAll returns every descendant of n matching selector, in document order.
// n itself is never part of the result. Selectors starting with "/", "./" or
// "(" are evaluated as XPath relative to n; anything else is CSS.
func QueryAll(n *html.Node, selector string) ([]*html.Node, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, NewSelectorError(selector, nil)
	}
	if n == nil {
		return nil, nil
	}
	if isXPath(selector) {
		return queryXPath(n, selector)
	}
	group, err := compile(selector)
	if err != nil {
		return nil, err
	}
	return cascadia.QueryAll(n, group), nil
}

// Query returns the first descendant of n matching selector, or nil.
func Query(n *html.Node, selector string) (*html.Node, error) {
	nodes, err := QueryAll(n, selector)
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	return nodes[0], nil
}

// Matches reports whether the element n matches selector.
func Matches(n *html.Node, selector string) (bool, error) {
	if !IsElement(n) {
		return false, nil
	}
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return false, NewSelectorError(selector, nil)
	}
	if isXPath(selector) {
		top := n
		for top.Parent != nil {
			top = top.Parent
		}
		hits, err := queryXPath(top, selector)
		if err != nil {
			return false, err
		}
		for _, h := range hits {
			if h == n {
				return true, nil
			}
		}
		return false, nil
	}
	group, err := compile(selector)
	if err != nil {
		return false, err
	}
	return group.Match(n), nil
}

// Closest returns n or its nearest element ancestor matching selector.
func Closest(n *html.Node, selector string) (*html.Node, error) {
	for p := n; p != nil; p = p.Parent {
		if !IsElement(p) {
			continue
		}
		ok, err := Matches(p, selector)
		if err != nil {
			return nil, err
		}
		if ok {
			return p, nil
		}
	}
	return nil, nil
}

// ChildrenMatching returns the element children of n that match selector.
func ChildrenMatching(n *html.Node, selector string) ([]*html.Node, error) {
	var out []*html.Node
	for _, c := range Children(n) {
		ok, err := Matches(c, selector)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}
