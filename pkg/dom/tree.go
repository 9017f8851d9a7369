// pkg/dom/tree.go
package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsFragment reports whether n is a detached fragment created by CreateFragment.
func IsFragment(n *html.Node) bool {
	return n != nil && n.Type == html.DocumentNode && n.Data == FragmentName
}

// IsContainer reports whether n can hold children in a cursor context
// (an element or a fragment).
func IsContainer(n *html.Node) bool {
	return IsElement(n) || IsFragment(n)
}

// walk visits n and its descendants in document order. Returning false from
// visit skips the visited node's subtree.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// Walk is the exported form of walk.
func Walk(n *html.Node, visit func(*html.Node) bool) { walk(n, visit) }

// Contains reports whether other is n or a descendant of n.
func Contains(n, other *html.Node) bool {
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// detach removes n from its parent, if any.
func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// AppendChild appends child to parent, detaching it from any previous parent
// first. A fragment child contributes its children instead of itself.
// Appending an ancestor of parent is ignored.
func AppendChild(parent, child *html.Node) {
	if parent == nil || child == nil || Contains(child, parent) {
		return
	}
	if IsFragment(child) {
		for c := child.FirstChild; c != nil; {
			next := c.NextSibling
			child.RemoveChild(c)
			parent.AppendChild(c)
			c = next
		}
		return
	}
	detach(child)
	parent.AppendChild(child)
}

// InsertBefore inserts child into parent before ref. A nil ref appends. A ref
// that is not a child of parent leaves the tree unchanged.
func InsertBefore(parent, child, ref *html.Node) {
	if ref == nil {
		AppendChild(parent, child)
		return
	}
	if parent == nil || child == nil || child == ref || ref.Parent != parent || Contains(child, parent) {
		return
	}
	if IsFragment(child) {
		for c := child.FirstChild; c != nil; {
			next := c.NextSibling
			child.RemoveChild(c)
			parent.InsertBefore(c, ref)
			c = next
		}
		return
	}
	detach(child)
	parent.InsertBefore(child, ref)
}

// Remove detaches n from the tree.
func Remove(n *html.Node) {
	if n != nil {
		detach(n)
	}
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// Children returns the element children of n.
func Children(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// ChildNodes returns every child of n, including text and comment nodes.
func ChildNodes(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ParentElement returns n's parent when that parent is an element.
func ParentElement(n *html.Node) *html.Node {
	if n == nil || n.Parent == nil || n.Parent.Type != html.ElementNode {
		return nil
	}
	return n.Parent
}

// Clone returns a deep structural copy of n. Attributes and children are
// copied; live control state held by a Document is not.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      make([]html.Attribute, len(n.Attr)),
	}
	copy(clone.Attr, n.Attr)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(Clone(c))
	}
	return clone
}

// Describe renders a short tag#id.class label for diagnostics.
func Describe(n *html.Node) string {
	switch {
	case n == nil:
		return "<nil>"
	case IsFragment(n):
		return "#fragment"
	case n.Type == html.TextNode:
		return "#text"
	case n.Type == html.DocumentNode:
		return "#document"
	case n.Type != html.ElementNode:
		return "?"
	}
	var sb strings.Builder
	sb.WriteString(n.Data)
	if id := Attr(n, "id"); id != "" {
		sb.WriteString("#" + id)
	}
	if classes := Classes(n); len(classes) > 0 {
		sb.WriteString("." + strings.Join(classes, "."))
	}
	return sb.String()
}

// DescribeAll maps Describe over nodes.
func DescribeAll(nodes []*html.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = Describe(n)
	}
	return out
}
